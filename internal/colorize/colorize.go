package colorize

import (
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/nao1215/tokhist/internal/model"
)

// Colorizer turns rendered histogram text into terminal output.
type Colorizer interface {
	Colorize(text model.RenderedText) string
}

// ANSIColorizer highlights digits, words and bar characters with ANSI
// escape sequences.
type ANSIColorizer struct {
	bar    rune
	number *color.Color
	word   *color.Color
	barC   *color.Color
}

// Option configures an ANSIColorizer.
type Option func(*ANSIColorizer)

// WithBarChar sets the bar character to highlight. Defaults to '='.
func WithBarChar(r rune) Option {
	return func(c *ANSIColorizer) {
		c.bar = r
	}
}

// WithPalette sets the colors.
func WithPalette(p Palette) Option {
	return func(c *ANSIColorizer) {
		c.number = newColor(p.Number)
		c.word = newColor(p.Word)
		c.barC = newColor(p.Bar)
	}
}

// NewANSIColorizer creates a colorizer with the default palette.
func NewANSIColorizer(opts ...Option) *ANSIColorizer {
	c := &ANSIColorizer{bar: model.DefaultBarChar}
	WithPalette(DefaultPalette())(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newColor returns a color that emits escape codes regardless of
// whether stdout is a terminal.
func newColor(attr color.Attribute) *color.Color {
	c := color.New(attr)
	c.EnableColor()
	return c
}

// Colorize flattens text and highlights it in a single left-to-right scan.
// Classes never overlap as long as the bar character is not a letter or
// digit, which model.RenderConfig.Validate guarantees.
func (c *ANSIColorizer) Colorize(text model.RenderedText) string {
	return c.ColorizeString(text.String())
}

// ColorizeString highlights an arbitrary string.
func (c *ANSIColorizer) ColorizeString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 2)

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case isDigit(r):
			j := scan(s, i, isDigit)
			sb.WriteString(c.number.Sprint(s[i:j]))
			i = j
		case isLetter(r):
			j := scan(s, i, isLetter)
			if j-i >= 2 {
				sb.WriteString(c.word.Sprint(s[i:j]))
			} else {
				sb.WriteString(s[i:j])
			}
			i = j
		case r == c.bar:
			sb.WriteString(c.barC.Sprint(s[i : i+size]))
			i += size
		default:
			sb.WriteString(s[i : i+size])
			i += size
		}
	}
	return sb.String()
}

// scan returns the end of the run starting at i whose runes satisfy f.
func scan(s string, i int, f func(rune) bool) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !f(r) {
			break
		}
		i += size
	}
	return i
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
