package model

import (
	"fmt"
	"strings"
	"unicode"
)

// Default render settings. They reproduce the classic jQuery token histogram:
// '=' bars, 50 columns wide, sorted by count.
const (
	DefaultBarChar        = '='
	DefaultMaxWidth       = 50
	DefaultSortDescending = true
)

// RenderConfig controls how a Histogram is drawn.
type RenderConfig struct {
	// BarChar is repeated to draw each bar.
	BarChar rune `json:"bar_char"`

	// MaxWidth is the bar length, in characters, of the largest count.
	MaxWidth int `json:"max_width"`

	// SortDescending orders lines by count, largest first. Ties keep
	// first-seen order.
	SortDescending bool `json:"sort_descending"`
}

// DefaultRenderConfig returns the default render settings.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		BarChar:        DefaultBarChar,
		MaxWidth:       DefaultMaxWidth,
		SortDescending: DefaultSortDescending,
	}
}

// Validate checks that the configuration can be rendered and colorized
// without ambiguity.
func (c RenderConfig) Validate() error {
	if c.MaxWidth <= 0 {
		return ErrInvalidWidth
	}
	if !IsValidBarChar(c.BarChar) {
		return fmt.Errorf("%w: %q", ErrInvalidBarChar, c.BarChar)
	}
	return nil
}

// IsValidBarChar reports whether r can be used as a bar character.
func IsValidBarChar(r rune) bool {
	switch {
	case r == 0, r == unicode.ReplacementChar:
		return false
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return false
	case unicode.IsSpace(r), unicode.IsControl(r):
		return false
	}
	return true
}

// RenderedLine is one histogram row: label, bar and count.
type RenderedLine struct {
	Label string `json:"label"`
	Bar   string `json:"bar"`
	Count int    `json:"count"`
}

// RenderedText is the plain-text histogram produced by a renderer.
// It carries no styling.
type RenderedText struct {
	// Lines holds one entry per histogram category, in display order.
	Lines []RenderedLine `json:"lines"`

	// LabelWidth is the column width labels are padded to.
	LabelWidth int `json:"label_width"`
}

// Len returns the number of lines.
func (t RenderedText) Len() int {
	return len(t.Lines)
}

// Strings returns each line formatted as "<label> <bar> <count>",
// with labels left-aligned to LabelWidth.
func (t RenderedText) Strings() []string {
	out := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		out[i] = fmt.Sprintf("%-*s %s %d", t.LabelWidth, l.Label, l.Bar, l.Count)
	}
	return out
}

// String returns all lines, each terminated by a newline.
func (t RenderedText) String() string {
	var sb strings.Builder
	for _, line := range t.Strings() {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
