package lexer

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/nao1215/tokhist/internal/model"
)

// Tokenizer converts source text into a flat list of tokens.
// On failure it returns a *ParseError and no tokens.
type Tokenizer interface {
	// Name identifies the tokenizer, e.g. "javascript" or "chroma:python".
	Name() string

	// Tokenize splits src into tokens in source order.
	Tokenize(src string) ([]model.Token, error)
}

// Option configures a tokenizer.
type Option func(*options)

type options struct {
	comments bool
}

// WithComments emits comment tokens instead of dropping them.
func WithComments(enabled bool) Option {
	return func(o *options) {
		o.comments = enabled
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Lexer names understood by Lookup besides chroma lexer names.
const (
	NameJavaScript = "javascript"
	NameAuto       = "auto"
)

// javaScriptMediaTypes lists media types handled by the JavaScript tokenizer.
var javaScriptMediaTypes = map[string]bool{
	"application/javascript":   true,
	"application/x-javascript": true,
	"application/ecmascript":   true,
	"text/javascript":          true,
	"text/ecmascript":          true,
	"module":                   true,
}

// IsJavaScriptMediaType reports whether mediaType holds JavaScript.
// Parameters are ignored. An empty media type counts as JavaScript.
func IsJavaScriptMediaType(mediaType string) bool {
	mt, _, _ := strings.Cut(mediaType, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	if mt == "" {
		return true
	}
	return javaScriptMediaTypes[mt]
}

// Lookup returns the tokenizer for name.
//
// "", "javascript" and "js" select JavaScript. "auto" chooses per input:
// JavaScript for JavaScript media types, otherwise a chroma lexer matched
// by mediaType and then by content. Any other name is looked up in
// chroma's registry.
func Lookup(name, mediaType string, opts ...Option) (Tokenizer, error) {
	switch strings.ToLower(name) {
	case "", NameJavaScript, "js":
		return NewJavaScript(opts...), nil
	case NameAuto:
		return &autoTokenizer{mediaType: mediaType, opts: opts}, nil
	}

	l := lexers.Get(name)
	if l == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLexer, name)
	}
	return newChroma(l, opts...), nil
}

// autoTokenizer defers the choice of tokenizer until the source is known.
type autoTokenizer struct {
	mediaType string
	opts      []Option
}

func (a *autoTokenizer) Name() string {
	return NameAuto
}

func (a *autoTokenizer) Tokenize(src string) ([]model.Token, error) {
	return a.resolve(src).Tokenize(src)
}

func (a *autoTokenizer) resolve(src string) Tokenizer {
	if a.mediaType != "" && IsJavaScriptMediaType(a.mediaType) {
		return NewJavaScript(a.opts...)
	}
	if a.mediaType != "" {
		if l := lexers.MatchMimeType(a.mediaType); l != nil {
			return newChroma(l, a.opts...)
		}
	}
	if l := lexers.Analyse(src); l != nil {
		return newChroma(l, a.opts...)
	}
	return NewJavaScript(a.opts...)
}
