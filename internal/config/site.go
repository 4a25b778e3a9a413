package config

import (
	"maps"
	"net/url"
)

// SourceConfig holds settings for one URL, or the defaults for all URLs.
type SourceConfig struct {
	// Cookie is sent as the Cookie header, e.g. "name=value; other=x".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Encoding overrides the response charset, e.g. "shift_jis".
	Encoding string `yaml:"encoding,omitempty"`

	// Lexer overrides the tokenizer for this source.
	Lexer string `yaml:"lexer,omitempty"`

	// ExtractScripts tokenizes inline <script> elements of HTML pages.
	ExtractScripts *bool `yaml:"extractScripts,omitempty"`

	// FollowScripts also downloads <script src> files of HTML pages.
	FollowScripts *bool `yaml:"followScripts,omitempty"`
}

// RenderSection is the render part of the config file.
type RenderSection struct {
	// Bar is the bar character.
	Bar string `yaml:"bar,omitempty"`

	// Width is the length of the longest bar.
	Width int `yaml:"width,omitempty"`

	// Sort orders categories by count, largest first.
	Sort *bool `yaml:"sort,omitempty"`
}

// ColorSection is the colors part of the config file.
type ColorSection struct {
	// Enabled turns colors on or off.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Number colors digit runs.
	Number string `yaml:"number,omitempty"`

	// Word colors letter runs.
	Word string `yaml:"word,omitempty"`

	// Bar colors bar characters.
	Bar string `yaml:"bar,omitempty"`
}

// File represents the structure of the .tokhist configuration file.
type File struct {
	// Defaults apply to every source unless overridden.
	Defaults SourceConfig `yaml:"defaults,omitempty"`

	// Sources maps a URL, or a host name, to its settings.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`

	// Render configures the histogram text.
	Render RenderSection `yaml:"render,omitempty"`

	// Colors configures the terminal palette.
	Colors ColorSection `yaml:"colors,omitempty"`
}

// GetSourceConfig returns the settings for rawURL merged over the defaults.
// An entry for the exact URL wins over an entry for its host.
func (cf *File) GetSourceConfig(rawURL string) SourceConfig {
	result := cf.Defaults
	if cf.Defaults.Headers != nil {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	sc, ok := cf.Sources[rawURL]
	if !ok {
		if u, err := url.Parse(rawURL); err == nil {
			sc, ok = cf.Sources[u.Hostname()]
		}
	}
	if !ok {
		return result
	}

	if sc.Cookie != "" {
		result.Cookie = sc.Cookie
	}
	if len(sc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, sc.Headers)
	}
	if sc.Encoding != "" {
		result.Encoding = sc.Encoding
	}
	if sc.Lexer != "" {
		result.Lexer = sc.Lexer
	}
	if sc.ExtractScripts != nil {
		result.ExtractScripts = sc.ExtractScripts
	}
	if sc.FollowScripts != nil {
		result.FollowScripts = sc.FollowScripts
	}
	return result
}
