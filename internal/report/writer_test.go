package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/tokhist/internal/colorize"
	"github.com/nao1215/tokhist/internal/histogram"
	"github.com/nao1215/tokhist/internal/model"
)

// createTestRun creates a completed run for "a = b".
func createTestRun() *model.Run {
	run := model.NewRun("https://example.com/a.js")
	run.StartedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run.Elapsed = 150 * time.Millisecond
	run.Lexer = "javascript"
	run.Response = &model.Response{
		URL:         run.URL,
		StatusCode:  200,
		ContentType: "application/javascript",
		Size:        5,
		Hash:        "deadbeef",
	}
	run.Histogram = model.NewHistogram()
	run.Histogram.AddN("Identifier", 2)
	run.Histogram.AddN("Punctuator", 1)
	run.Render = model.RenderConfig{BarChar: '=', MaxWidth: 10, SortDescending: true}
	run.Rendered = histogram.NewASCIIRenderer().Render(run.Histogram, run.Render)
	run.Colorized = colorize.NewANSIColorizer().Colorize(run.Rendered)
	return run
}

// failingWriter always fails.
type failingWriter struct{}

func (failingWriter) Write(*model.Run) (int, error) {
	return 0, errors.New("write failed")
}

// TestTextWriter tests terminal output.
func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes plain histogram without color", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTextWriter(&buf, WithColor(false)).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "Identifier ========== 2\nPunctuator ===== 1\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
		if n != len(want) {
			t.Errorf("expected %d bytes, got %d", len(want), n)
		}
	})

	t.Run("writes colorized histogram by default", func(t *testing.T) {
		t.Parallel()

		run := createTestRun()
		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != run.Colorized {
			t.Errorf("expected colorized output, got %q", buf.String())
		}
	})

	t.Run("header names the URL", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithColor(false), WithHeader(true)).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "==> https://example.com/a.js <==\n") {
			t.Errorf("expected header, got %q", buf.String())
		}
	})

	t.Run("failed run writes nothing", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("https://example.com/missing.js")
		run.Fail(errors.New("fetch failed"))

		var buf bytes.Buffer
		n, err := NewTextWriter(&buf).Write(run)
		if err != nil || n != 0 || buf.Len() != 0 {
			t.Errorf("expected no output, got %q (%d, %v)", buf.String(), n, err)
		}
	})
}

// TestJSONWriter tests JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "\n") {
			t.Errorf("expected a single line, got %q", out)
		}

		var decoded struct {
			Version     string `json:"version"`
			TotalTokens int    `json:"total_tokens"`
			Run         struct {
				URL       string                 `json:"url"`
				Histogram []model.HistogramEntry `json:"histogram"`
				Response  struct {
					Hash string `json:"hash"`
				} `json:"response"`
			} `json:"run"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if decoded.Version != "v1.2.3" || decoded.TotalTokens != 3 {
			t.Errorf("unexpected metadata %+v", decoded)
		}
		if decoded.Run.URL != "https://example.com/a.js" || decoded.Run.Response.Hash != "deadbeef" {
			t.Errorf("unexpected run %+v", decoded.Run)
		}
		want := []model.HistogramEntry{{Category: "Identifier", Count: 2}, {Category: "Punctuator", Count: 1}}
		if len(decoded.Run.Histogram) != 2 || decoded.Run.Histogram[0] != want[0] || decoded.Run.Histogram[1] != want[1] {
			t.Errorf("expected histogram %v, got %v", want, decoded.Run.Histogram)
		}
	})

	t.Run("omits colorized text and body", func(t *testing.T) {
		t.Parallel()

		run := createTestRun()
		run.Response.Body = "a = b"
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "\x1b[") || strings.Contains(buf.String(), "a = b") {
			t.Errorf("unexpected content in JSON: %s", buf.String())
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"run\": {") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
	})

	t.Run("records failure", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("https://example.com/missing.js")
		run.Fail(errors.New("fetch https://example.com/missing.js: 404 Not Found"))
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"error":"fetch https://example.com/missing.js: 404 Not Found"`) {
			t.Errorf("expected error in JSON, got %s", buf.String())
		}
	})
}

// TestMarkdownWriter tests Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes table and pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Token Histogram",
			"https://example.com/a.js",
			"deadbeef",
			"## Categories",
			"Identifier",
			"66.7%",
			"```mermaid",
			"pie",
			"Identifier ========== 2",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(out, "\x1b[") {
			t.Error("markdown must not contain ANSI codes")
		}
	})

	t.Run("reports failure", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("https://example.com/missing.js")
		run.Fail(errors.New("boom"))
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "boom") || strings.Contains(buf.String(), "## Categories") {
			t.Errorf("unexpected output %s", buf.String())
		}
	})

	t.Run("empty histogram", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun("https://example.com/empty.js")
		run.Histogram = model.NewHistogram()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No tokens found.") {
			t.Errorf("expected empty note, got %s", buf.String())
		}
	})
}

// TestMultiWriter tests fan-out.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewTextWriter(&a, WithColor(false)), NewJSONWriter(&b))
		n, err := mw.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
		if n != a.Len()+b.Len() {
			t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewTextWriter(&buf))
		if _, err := mw.Write(createTestRun()); err == nil {
			t.Error("expected error")
		}
		if buf.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

func TestPercent(t *testing.T) {
	t.Parallel()

	if got := percent(1, 3); got != "33.3%" {
		t.Errorf("expected 33.3%%, got %s", got)
	}
	if got := percent(0, 0); got != "0.0%" {
		t.Errorf("expected 0.0%%, got %s", got)
	}
}
