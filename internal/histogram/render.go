package histogram

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/tokhist/internal/model"
)

// Renderer draws a histogram as text.
type Renderer interface {
	Render(h *model.Histogram, cfg model.RenderConfig) model.RenderedText
}

// ASCIIRenderer draws each category as a bar of a repeated character.
// It never emits color codes.
type ASCIIRenderer struct{}

// NewASCIIRenderer creates an ASCIIRenderer.
func NewASCIIRenderer() *ASCIIRenderer {
	return &ASCIIRenderer{}
}

// Render draws h according to cfg. The config is expected to be valid;
// a non-positive width draws empty bars.
func (r *ASCIIRenderer) Render(h *model.Histogram, cfg model.RenderConfig) model.RenderedText {
	if h.Len() == 0 {
		return model.RenderedText{Lines: []model.RenderedLine{}}
	}

	entries := h.Entries()
	if cfg.SortDescending {
		slices.SortStableFunc(entries, func(a, b model.HistogramEntry) int {
			return b.Count - a.Count
		})
	}

	maxCount := h.Max()
	bar := string(cfg.BarChar)

	text := model.RenderedText{Lines: make([]model.RenderedLine, 0, len(entries))}
	for _, e := range entries {
		text.Lines = append(text.Lines, model.RenderedLine{
			Label: e.Category,
			Bar:   strings.Repeat(bar, BarLength(e.Count, maxCount, cfg.MaxWidth)),
			Count: e.Count,
		})
		if w := utf8.RuneCountInString(e.Category); w > text.LabelWidth {
			text.LabelWidth = w
		}
	}
	return text
}

// BarLength scales count against maxCount to a bar of at most width
// characters, rounding half away from zero.
func BarLength(count, maxCount, width int) int {
	if maxCount <= 0 || count <= 0 || width <= 0 {
		return 0
	}
	n := int(math.Round(float64(count) / float64(maxCount) * float64(width)))
	return min(n, width)
}
