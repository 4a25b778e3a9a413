package model

import "fmt"

// Range is a half-open byte range [Start, End) into the tokenized source.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// String returns the range as "start:end".
func (r Range) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Token is a lexical unit extracted from source text.
// Category comes from the tokenizer's own taxonomy (e.g. "Identifier",
// "Punctuator") and is the only field the histogram looks at.
type Token struct {
	// Category is the grammatical category assigned by the tokenizer.
	Category string `json:"category"`

	// Text is the exact source text of the token.
	Text string `json:"text"`

	// Range locates the token in the source it was read from.
	Range Range `json:"range"`
}

// String returns a short debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Category, t.Text, t.Range)
}
