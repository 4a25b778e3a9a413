package histogram

import "github.com/nao1215/tokhist/internal/model"

// Aggregate counts tokens per category.
// Categories appear in the order their first token was seen. The counts
// always sum to len(tokens); an empty slice yields an empty histogram.
func Aggregate(tokens []model.Token) *model.Histogram {
	h := model.NewHistogram()
	for _, tok := range tokens {
		h.Add(tok.Category)
	}
	return h
}

// Merge adds the counts of every histogram into a new one.
func Merge(hs ...*model.Histogram) *model.Histogram {
	out := model.NewHistogram()
	for _, h := range hs {
		if h == nil {
			continue
		}
		for _, e := range h.Entries() {
			out.AddN(e.Category, e.Count)
		}
	}
	return out
}
