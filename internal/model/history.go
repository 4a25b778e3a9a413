package model

import "time"

// HistoryEntry is a stored summary of a successful run.
type HistoryEntry struct {
	// ID is the database identifier.
	ID int64 `json:"id"`

	// URL is the target URL.
	URL string `json:"url"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`

	// StatusCode is the HTTP status of the fetch.
	StatusCode int `json:"status_code"`

	// Hash is the SHA3-256 hex digest of the raw body.
	Hash string `json:"hash"`

	// Lexer is the tokenizer name.
	Lexer string `json:"lexer"`

	// TotalTokens is the number of tokens counted.
	TotalTokens int `json:"total_tokens"`

	// Histogram holds the per-category counts.
	Histogram *Histogram `json:"histogram"`
}

// NewHistoryEntry summarizes run for storage.
func NewHistoryEntry(run *Run) *HistoryEntry {
	e := &HistoryEntry{
		URL:         run.URL,
		Timestamp:   run.StartedAt,
		Lexer:       run.Lexer,
		TotalTokens: run.TotalTokens(),
		Histogram:   run.Histogram,
	}
	if run.Response != nil {
		e.StatusCode = run.Response.StatusCode
		e.Hash = run.Response.Hash
	}
	if e.Histogram == nil {
		e.Histogram = NewHistogram()
	}
	return e
}

// CategoryDelta is the change of one category between two runs.
type CategoryDelta struct {
	Category string `json:"category"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
	Delta    int    `json:"delta"`
}

// Comparison describes how the histogram of a URL changed between two runs.
type Comparison struct {
	// URL is the compared URL.
	URL string `json:"url"`

	// Before is the older run.
	Before *HistoryEntry `json:"before"`

	// After is the newer run.
	After *HistoryEntry `json:"after"`

	// ContentChanged reports whether the body hash differs.
	ContentChanged bool `json:"content_changed"`

	// Deltas lists every category present in either run.
	Deltas []CategoryDelta `json:"deltas"`

	// TotalDelta is the change of the total token count.
	TotalDelta int `json:"total_delta"`
}

// Changed reports whether any category count changed.
func (c *Comparison) Changed() bool {
	for _, d := range c.Deltas {
		if d.Delta != 0 {
			return true
		}
	}
	return false
}
