package lexer

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError via errors.Is.
	ErrParse = errors.New("parse error")

	// ErrUnknownLexer is returned by Lookup for an unknown tokenizer name.
	ErrUnknownLexer = errors.New("unknown lexer")
)

// ParseError reports source text that is not valid for the tokenizer.
// Line and Column are 1-based.
type ParseError struct {
	// Source names the text being tokenized, when known.
	Source string

	Line    int
	Column  int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: line %d, column %d: %s", e.Source, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// position converts a byte offset into a 1-based line and column.
// Columns count runes.
func position(src string, offset int) (line, column int) {
	line, column = 1, 1
	for i, r := range src {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
