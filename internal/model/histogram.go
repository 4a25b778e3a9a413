package model

import (
	"encoding/json"
	"fmt"
)

// HistogramEntry is a single category and its count.
type HistogramEntry struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Histogram maps category labels to occurrence counts.
// Iteration order is the order in which categories were first added,
// which a plain Go map cannot provide.
//
// The zero value is an empty histogram ready for use. A nil *Histogram
// reads as empty; only AddN and UnmarshalJSON need a non-nil receiver.
type Histogram struct {
	// order holds categories in first-seen order.
	order []string

	// counts holds the count for each category in order.
	counts map[string]int
}

// NewHistogram creates an empty Histogram.
func NewHistogram() *Histogram {
	return &Histogram{
		order:  make([]string, 0),
		counts: make(map[string]int),
	}
}

// Add increments the count of category by one.
func (h *Histogram) Add(category string) {
	h.AddN(category, 1)
}

// AddN increments the count of category by n.
// A category is registered on first use even when n is zero.
// Negative n is ignored because counts are never negative.
func (h *Histogram) AddN(category string, n int) {
	if n < 0 {
		return
	}
	if h.counts == nil {
		h.counts = make(map[string]int)
	}
	if _, ok := h.counts[category]; !ok {
		h.order = append(h.order, category)
	}
	h.counts[category] += n
}

// Count returns the count for category, or 0 if it is absent.
func (h *Histogram) Count(category string) int {
	if h == nil {
		return 0
	}
	return h.counts[category]
}

// Has reports whether category is present in the histogram.
func (h *Histogram) Has(category string) bool {
	if h == nil {
		return false
	}
	_, ok := h.counts[category]
	return ok
}

// Len returns the number of distinct categories.
func (h *Histogram) Len() int {
	if h == nil {
		return 0
	}
	return len(h.order)
}

// Categories returns the categories in first-seen order.
func (h *Histogram) Categories() []string {
	if h == nil {
		return []string{}
	}
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Entries returns category/count pairs in first-seen order.
func (h *Histogram) Entries() []HistogramEntry {
	if h == nil {
		return []HistogramEntry{}
	}
	entries := make([]HistogramEntry, len(h.order))
	for i, c := range h.order {
		entries[i] = HistogramEntry{Category: c, Count: h.counts[c]}
	}
	return entries
}

// Total returns the sum of all counts.
func (h *Histogram) Total() int {
	if h == nil {
		return 0
	}
	total := 0
	for _, n := range h.counts {
		total += n
	}
	return total
}

// Max returns the largest count, or 0 for an empty histogram.
func (h *Histogram) Max() int {
	if h == nil {
		return 0
	}
	maxCount := 0
	for _, n := range h.counts {
		if n > maxCount {
			maxCount = n
		}
	}
	return maxCount
}

// Equal reports whether both histograms hold the same categories with the
// same counts. Insertion order is ignored.
func (h *Histogram) Equal(other *Histogram) bool {
	if h == nil || other == nil {
		return h.Len() == 0 && other.Len() == 0
	}
	if len(h.counts) != len(other.counts) {
		return false
	}
	for c, n := range h.counts {
		m, ok := other.counts[c]
		if !ok || m != n {
			return false
		}
	}
	return true
}

// String returns a compact representation such as "{Identifier:2, Punctuator:1}".
func (h *Histogram) String() string {
	s := "{"
	for i, e := range h.Entries() {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s:%d", e.Category, e.Count)
	}
	return s + "}"
}

// MarshalJSON encodes the histogram as an ordered list of entries so that
// first-seen order survives a round trip.
func (h *Histogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Entries())
}

// UnmarshalJSON decodes a list of entries produced by MarshalJSON.
func (h *Histogram) UnmarshalJSON(data []byte) error {
	var entries []HistogramEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	h.order = make([]string, 0, len(entries))
	h.counts = make(map[string]int, len(entries))
	for _, e := range entries {
		h.AddN(e.Category, e.Count)
	}
	return nil
}
