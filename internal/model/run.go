package model

import (
	"mime"
	"strings"
	"time"
)

// Response is the result of a successful fetch.
// Body is already decoded to UTF-8.
type Response struct {
	// URL is the requested URL.
	URL string `json:"url"`

	// FinalURL is the URL after redirects.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP status code. Always 2xx for a Response.
	StatusCode int `json:"status_code"`

	// ContentType is the raw Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Charset is the character set the body was decoded from.
	Charset string `json:"charset,omitempty"`

	// Body is the decoded response body.
	Body string `json:"-"`

	// Size is the number of raw bytes read from the wire.
	Size int `json:"size"`

	// Hash is the hex SHA3-256 digest of the raw body.
	Hash string `json:"hash"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// MediaType returns the Content-Type without parameters, lowercased.
// It returns "" when the header is missing or malformed.
func (r *Response) MediaType() string {
	if r == nil || r.ContentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

// IsHTML reports whether the response is an HTML document.
func (r *Response) IsHTML() bool {
	switch r.MediaType() {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// Source is a piece of script text handed to the tokenizer.
type Source struct {
	// Name identifies the source, e.g. the URL or "script#2".
	Name string `json:"name"`

	// Content is the script text.
	Content string `json:"-"`
}

// Run is one pipeline execution for a single URL.
// Steps fill it in order; fields of steps that did not run stay zero.
type Run struct {
	// URL is the target URL.
	URL string `json:"url"`

	// Lexer is the tokenizer name used for this run.
	Lexer string `json:"lexer,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Response is the fetched document.
	Response *Response `json:"response,omitempty"`

	// Sources are the script texts to tokenize. Usually the body itself;
	// inline scripts when the response is HTML.
	Sources []Source `json:"sources,omitempty"`

	// Tokens are all tokens from all sources, in source order.
	Tokens []Token `json:"-"`

	// Histogram holds the per-category counts.
	Histogram *Histogram `json:"histogram,omitempty"`

	// Render is the configuration the text was rendered with.
	Render RenderConfig `json:"render"`

	// Rendered is the plain histogram text.
	Rendered RenderedText `json:"rendered"`

	// Colorized is Rendered with ANSI color codes. Empty when colors are off.
	Colorized string `json:"-"`

	// PerformedSteps lists the names of steps that completed.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage mirrors Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a Run for url using the default render settings.
func NewRun(url string) *Run {
	return &Run{
		URL:            url,
		StartedAt:      time.Now(),
		Render:         DefaultRenderConfig(),
		PerformedSteps: make([]string, 0),
	}
}

// AddStep records that a step completed.
func (r *Run) AddStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}

// Fail records the error that stopped the run.
func (r *Run) Fail(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Failed reports whether the run stopped with an error.
func (r *Run) Failed() bool {
	return r.Error != nil
}

// TotalTokens returns the number of tokens counted in the histogram.
func (r *Run) TotalTokens() int {
	if r.Histogram == nil {
		return 0
	}
	return r.Histogram.Total()
}

// Output returns the text a terminal should show: the colorized text when
// present, otherwise the plain rendering.
func (r *Run) Output() string {
	if r.Colorized != "" {
		return r.Colorized
	}
	return r.Rendered.String()
}
