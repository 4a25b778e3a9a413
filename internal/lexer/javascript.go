package lexer

import (
	"errors"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"github.com/nao1215/tokhist/internal/model"
)

// JavaScript token categories.
const (
	CategoryBoolean           = "Boolean"
	CategoryIdentifier        = "Identifier"
	CategoryKeyword           = "Keyword"
	CategoryNull              = "Null"
	CategoryNumeric           = "Numeric"
	CategoryPunctuator        = "Punctuator"
	CategoryString            = "String"
	CategoryRegularExpression = "RegularExpression"
	CategoryTemplate          = "Template"
	CategoryLineComment       = "LineComment"
	CategoryBlockComment      = "BlockComment"
)

// JavaScript tokenizes ECMAScript source.
type JavaScript struct {
	opts options
}

// NewJavaScript creates a JavaScript tokenizer.
func NewJavaScript(opts ...Option) *JavaScript {
	return &JavaScript{opts: newOptions(opts)}
}

// Name returns "javascript".
func (j *JavaScript) Name() string {
	return NameJavaScript
}

// Tokenize parses src as a complete program and returns its tokens.
// A syntax error anywhere yields a *ParseError and no tokens.
func (j *JavaScript) Tokenize(src string) ([]model.Token, error) {
	if _, err := js.Parse(parse.NewInputString(src), js.Options{}); err != nil {
		return nil, toParseError(src, err)
	}

	l := js.NewLexer(parse.NewInputString(src))
	tokens := make([]model.Token, 0, len(src)/4)

	var ctx slashContext
	offset := 0
	for {
		tt, text := l.Next()
		if tt == js.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, toParseError(src, err)
			}
			break
		}
		if (tt == js.DivToken || tt == js.DivEqToken) && ctx.regExpAllowed() {
			tt, text = l.RegExp()
			if tt == js.ErrorToken {
				return nil, toParseError(src, l.Err())
			}
		}

		start := offset
		offset += len(text)

		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken:
			continue
		case js.CommentToken, js.CommentLineTerminatorToken:
			if j.opts.comments {
				tokens = append(tokens, newToken(commentCategory(text), text, start))
			}
			continue
		}

		category := jsCategory(tt)
		if category == "" {
			line, column := position(src, start)
			return nil, &ParseError{Line: line, Column: column, Message: "unexpected token " + tt.String()}
		}
		tokens = append(tokens, newToken(category, text, start))
		ctx.push(tt)
	}
	return tokens, nil
}

func newToken(category string, text []byte, start int) model.Token {
	return model.Token{
		Category: category,
		Text:     string(text),
		Range:    model.Range{Start: start, End: start + len(text)},
	}
}

// jsCategory maps a lexer token type to its esprima token type name.
func jsCategory(tt js.TokenType) string {
	switch tt {
	case js.StringToken:
		return CategoryString
	case js.TemplateToken, js.TemplateStartToken, js.TemplateMiddleToken, js.TemplateEndToken:
		return CategoryTemplate
	case js.RegExpToken:
		return CategoryRegularExpression
	case js.PrivateIdentifierToken:
		return CategoryIdentifier
	case js.TrueToken, js.FalseToken:
		return CategoryBoolean
	case js.NullToken:
		return CategoryNull
	}

	switch {
	case js.IsNumeric(tt):
		return CategoryNumeric
	case js.IsPunctuator(tt):
		return CategoryPunctuator
	case js.IsReservedWord(tt):
		return CategoryKeyword
	case js.IsIdentifier(tt):
		return CategoryIdentifier
	}
	return ""
}

func commentCategory(text []byte) string {
	if strings.HasPrefix(string(text), "/*") {
		return CategoryBlockComment
	}
	return CategoryLineComment
}

// toParseError converts a parser or lexer error into a *ParseError.
func toParseError(src string, err error) *ParseError {
	var perr *parse.Error
	if errors.As(err, &perr) {
		return &ParseError{Line: perr.Line, Column: perr.Column, Message: perr.Message}
	}
	line, column := position(src, len(src))
	return &ParseError{Line: line, Column: column, Message: err.Error()}
}
