// Package histogram counts tokens per category and draws the counts as
// plain-text bars.
//
// Aggregate turns a token list into a model.Histogram. A Renderer turns a
// histogram into model.RenderedText, one line per category:
//
//	Identifier ========== 2
//	Punctuator ===== 1
//
// Bar length is the count scaled against the largest count, so the biggest
// category always spans the full configured width.
package histogram
