package lexer

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"

	"github.com/nao1215/tokhist/internal/model"
)

// Chroma tokenizes text with a chroma lexer. It accepts any input; text
// the lexer cannot match becomes a *ParseError.
type Chroma struct {
	lexer chroma.Lexer
	opts  options
}

// NewChroma wraps a chroma lexer.
func NewChroma(l chroma.Lexer, opts ...Option) *Chroma {
	return newChroma(l, opts...)
}

func newChroma(l chroma.Lexer, opts ...Option) *Chroma {
	return &Chroma{lexer: l, opts: newOptions(opts)}
}

// Name returns "chroma:" followed by the lexer name.
func (c *Chroma) Name() string {
	return "chroma:" + c.lexer.Config().Name
}

// Tokenize splits src into chroma tokens. Text and whitespace are dropped,
// and comments too unless enabled.
func (c *Chroma) Tokenize(src string) ([]model.Token, error) {
	it, err := c.lexer.Tokenise(nil, src)
	if err != nil {
		return nil, &ParseError{Line: 1, Column: 1, Message: err.Error()}
	}

	tokens := make([]model.Token, 0, len(src)/4)
	offset := 0
	for t := it(); t != chroma.EOF; t = it() {
		start := offset
		offset += len(t.Value)

		if t.Type == chroma.Error {
			line, column := position(src, start)
			return nil, &ParseError{
				Line:    line,
				Column:  column,
				Message: fmt.Sprintf("%s cannot tokenize %q", c.lexer.Config().Name, t.Value),
			}
		}

		category := chromaCategory(t.Type)
		if category == "" {
			continue
		}
		if t.Type.InCategory(chroma.Comment) && !c.opts.comments {
			continue
		}
		tokens = append(tokens, model.Token{
			Category: category,
			Text:     t.Value,
			Range:    model.Range{Start: start, End: offset},
		})
	}
	return tokens, nil
}

// chromaCategory returns the histogram label for a chroma token type, or ""
// for tokens that are not counted.
func chromaCategory(tt chroma.TokenType) string {
	if tt < 0 {
		return ""
	}
	category := tt.Category()
	switch category {
	case chroma.Text:
		return ""
	case chroma.Literal:
		return tt.SubCategory().String()
	}
	return category.String()
}
