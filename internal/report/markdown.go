package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/tokhist/internal/model"
)

// MarkdownWriter outputs runs as Markdown with a category table and a
// mermaid pie chart.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	if run.Failed() {
		md.Cautionf("Run failed: %s", run.ErrorMessage)
		md.PlainText("")
	} else {
		w.writeCategories(md, run)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("Token Histogram")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + run.URL + "`"},
		{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Elapsed", run.Elapsed.String()},
	}
	if run.Lexer != "" {
		rows = append(rows, []string{"Lexer", run.Lexer})
	}
	if resp := run.Response; resp != nil {
		rows = append(rows,
			[]string{"HTTP Status", strconv.Itoa(resp.StatusCode)},
			[]string{"Content-Type", valueOrDash(resp.ContentType)},
			[]string{"Size", strconv.Itoa(resp.Size) + " bytes"},
			[]string{"SHA3-256", "`" + resp.Hash + "`"},
		)
	}
	rows = append(rows, []string{"Status", statusText(run)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusText(run *model.Run) string {
	if run.Failed() {
		return "❌ Error - " + run.ErrorMessage
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, run *model.Run) {
	md.H2("Categories")
	md.PlainText("")

	if run.Histogram.Len() == 0 {
		md.Note("No tokens found.")
		md.PlainText("")
		return
	}

	total := run.TotalTokens()
	rows := make([][]string, 0, run.Rendered.Len()+1)
	for _, line := range run.Rendered.Lines {
		rows = append(rows, []string{
			line.Label,
			strconv.Itoa(line.Count),
			percent(line.Count, total),
		})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(total) + "**", "100.0%"})

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count", "Share"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, run)

	md.H2("Histogram")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, strings.TrimSuffix(run.Rendered.String(), "\n"))
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, run *model.Run) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Token Categories"),
		piechart.WithShowData(true),
	)
	for _, e := range run.Histogram.Entries() {
		if e.Count > 0 {
			chart.LabelAndIntValue(e.Category, uint64(e.Count))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [tokhist](https://github.com/nao1215/tokhist)*")
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return strconv.FormatFloat(float64(n)*100/float64(total), 'f', 1, 64) + "%"
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
