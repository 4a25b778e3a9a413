package report

import (
	"io"
	"strings"

	"github.com/nao1215/tokhist/internal/model"
)

// TextWriter prints the histogram of a run, colorized when the run has
// colorized text and colors are not disabled.
type TextWriter struct {
	baseWriter

	// color selects Run.Colorized over the plain rendering.
	color bool

	// header prefixes the output with the URL, for batches.
	header bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithColor enables or disables colored output.
func WithColor(enabled bool) TextWriterOption {
	return func(w *TextWriter) {
		w.color = enabled
	}
}

// WithHeader prints "==> url <==" before each histogram.
func WithHeader(enabled bool) TextWriterOption {
	return func(w *TextWriter) {
		w.header = enabled
	}
}

// NewTextWriter creates a TextWriter with colors enabled.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		color:      true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the histogram in a single write. A failed run writes
// nothing unless a header was requested.
func (w *TextWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder
	if w.header {
		sb.WriteString("==> " + run.URL + " <==\n")
	}
	if w.color {
		sb.WriteString(run.Output())
	} else {
		sb.WriteString(run.Rendered.String())
	}
	if sb.Len() == 0 {
		return 0, nil
	}
	return io.WriteString(w.output, sb.String())
}
