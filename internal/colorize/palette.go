package colorize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrUnknownColor is returned when a color name cannot be resolved.
var ErrUnknownColor = errors.New("unknown color")

// Palette holds the colors used for each highlighted class.
type Palette struct {
	Number color.Attribute
	Word   color.Attribute
	Bar    color.Attribute
}

// DefaultPalette returns yellow numbers, blue words and green bars.
func DefaultPalette() Palette {
	return Palette{
		Number: color.FgYellow,
		Word:   color.FgBlue,
		Bar:    color.FgGreen,
	}
}

var colorNames = map[string]color.Attribute{
	"black":     color.FgBlack,
	"red":       color.FgRed,
	"green":     color.FgGreen,
	"yellow":    color.FgYellow,
	"blue":      color.FgBlue,
	"magenta":   color.FgMagenta,
	"cyan":      color.FgCyan,
	"white":     color.FgWhite,
	"gray":      color.FgHiBlack,
	"grey":      color.FgHiBlack,
	"hiblack":   color.FgHiBlack,
	"hired":     color.FgHiRed,
	"higreen":   color.FgHiGreen,
	"hiyellow":  color.FgHiYellow,
	"hiblue":    color.FgHiBlue,
	"himagenta": color.FgHiMagenta,
	"hicyan":    color.FgHiCyan,
	"hiwhite":   color.FgHiWhite,
}

// ParseColor resolves a color name such as "yellow" or "hi-cyan".
// Names are case-insensitive; "-", "_" and spaces are ignored.
func ParseColor(name string) (color.Attribute, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	if attr, ok := colorNames[key]; ok {
		return attr, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, name)
}

// ParsePalette builds a palette from color names. Empty names keep the
// default for that class.
func ParsePalette(number, word, bar string) (Palette, error) {
	p := DefaultPalette()
	for _, f := range []struct {
		name string
		dst  *color.Attribute
	}{
		{number, &p.Number},
		{word, &p.Word},
		{bar, &p.Bar},
	} {
		if f.name == "" {
			continue
		}
		attr, err := ParseColor(f.name)
		if err != nil {
			return Palette{}, err
		}
		*f.dst = attr
	}
	return p, nil
}
