package histogram

import "github.com/nao1215/tokhist/internal/model"

// Compare diffs two stored runs of the same URL. Categories are listed in
// the newer run's order, followed by categories that only the older run had.
func Compare(before, after *model.HistoryEntry) *model.Comparison {
	c := &model.Comparison{
		URL:            after.URL,
		Before:         before,
		After:          after,
		ContentChanged: before.Hash != after.Hash,
		Deltas:         Diff(before.Histogram, after.Histogram),
		TotalDelta:     after.TotalTokens - before.TotalTokens,
	}
	return c
}

// Diff returns the per-category change from before to after.
func Diff(before, after *model.Histogram) []model.CategoryDelta {
	if before == nil {
		before = model.NewHistogram()
	}
	if after == nil {
		after = model.NewHistogram()
	}

	deltas := make([]model.CategoryDelta, 0, after.Len())
	for _, e := range after.Entries() {
		b := before.Count(e.Category)
		deltas = append(deltas, model.CategoryDelta{
			Category: e.Category,
			Before:   b,
			After:    e.Count,
			Delta:    e.Count - b,
		})
	}
	for _, e := range before.Entries() {
		if after.Has(e.Category) {
			continue
		}
		deltas = append(deltas, model.CategoryDelta{
			Category: e.Category,
			Before:   e.Count,
			Delta:    -e.Count,
		})
	}
	return deltas
}
