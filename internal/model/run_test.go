package model

import (
	"errors"
	"testing"
)

// TestRun tests run bookkeeping.
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("new run defaults", func(t *testing.T) {
		t.Parallel()

		r := NewRun("https://example.com/app.js")
		if r.Render != DefaultRenderConfig() {
			t.Errorf("expected default render config, got %+v", r.Render)
		}
		if r.Failed() {
			t.Error("new run should not be failed")
		}
		if r.TotalTokens() != 0 {
			t.Errorf("expected 0 tokens, got %d", r.TotalTokens())
		}
	})

	t.Run("fail records message", func(t *testing.T) {
		t.Parallel()

		r := NewRun("https://example.com/app.js")
		r.AddStep("fetch")
		r.Fail(errors.New("boom"))

		if !r.Failed() || r.ErrorMessage != "boom" {
			t.Errorf("unexpected error state: %v %q", r.Error, r.ErrorMessage)
		}
		if len(r.PerformedSteps) != 1 {
			t.Errorf("expected 1 step, got %d", len(r.PerformedSteps))
		}
	})

	t.Run("output prefers colorized text", func(t *testing.T) {
		t.Parallel()

		r := NewRun("u")
		r.Rendered = RenderedText{LabelWidth: 4, Lines: []RenderedLine{{Label: "Null", Bar: "=", Count: 1}}}
		if r.Output() != "Null = 1\n" {
			t.Errorf("unexpected plain output %q", r.Output())
		}
		r.Colorized = "colored"
		if r.Output() != "colored" {
			t.Errorf("unexpected colored output %q", r.Output())
		}
	})
}

// TestResponseMediaType tests Content-Type handling.
func TestResponseMediaType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		mediaType   string
		html        bool
	}{
		{"application/javascript; charset=utf-8", "application/javascript", false},
		{"Text/HTML; charset=ISO-8859-1", "text/html", true},
		{"application/xhtml+xml", "application/xhtml+xml", true},
		{"", "", false},
		{";;;", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			r := &Response{ContentType: tt.contentType}
			if got := r.MediaType(); got != tt.mediaType {
				t.Errorf("MediaType() = %q, want %q", got, tt.mediaType)
			}
			if got := r.IsHTML(); got != tt.html {
				t.Errorf("IsHTML() = %v, want %v", got, tt.html)
			}
		})
	}
}
