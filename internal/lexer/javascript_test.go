package lexer

import (
	"errors"
	"testing"

	"github.com/nao1215/tokhist/internal/model"
)

type want struct {
	category string
	text     string
}

func assertTokens(t *testing.T, got []model.Token, expected []want) {
	t.Helper()

	if len(got) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(got), got)
	}
	for i, w := range expected {
		if got[i].Category != w.category || got[i].Text != w.text {
			t.Errorf("token %d: expected %s(%q), got %s", i, w.category, w.text, got[i])
		}
	}
}

// TestJavaScriptTokenize tests esprima-style categorization.
func TestJavaScriptTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []want
	}{
		{
			name: "variable declaration",
			src:  "var answer = 42;",
			want: []want{
				{CategoryKeyword, "var"},
				{CategoryIdentifier, "answer"},
				{CategoryPunctuator, "="},
				{CategoryNumeric, "42"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "literals",
			src:  `x = [true, false, null, 'a', this];`,
			want: []want{
				{CategoryIdentifier, "x"},
				{CategoryPunctuator, "="},
				{CategoryPunctuator, "["},
				{CategoryBoolean, "true"},
				{CategoryPunctuator, ","},
				{CategoryBoolean, "false"},
				{CategoryPunctuator, ","},
				{CategoryNull, "null"},
				{CategoryPunctuator, ","},
				{CategoryString, "'a'"},
				{CategoryPunctuator, ","},
				{CategoryKeyword, "this"},
				{CategoryPunctuator, "]"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "regular expression after assignment",
			src:  "var re = /ab+c/g;",
			want: []want{
				{CategoryKeyword, "var"},
				{CategoryIdentifier, "re"},
				{CategoryPunctuator, "="},
				{CategoryRegularExpression, "/ab+c/g"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "division after identifier and bracket",
			src:  "a = b / c[0] / 2;",
			want: []want{
				{CategoryIdentifier, "a"},
				{CategoryPunctuator, "="},
				{CategoryIdentifier, "b"},
				{CategoryPunctuator, "/"},
				{CategoryIdentifier, "c"},
				{CategoryPunctuator, "["},
				{CategoryNumeric, "0"},
				{CategoryPunctuator, "]"},
				{CategoryPunctuator, "/"},
				{CategoryNumeric, "2"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "regular expression after return",
			src:  "function f(s) { return /x/.test(s); }",
			want: []want{
				{CategoryKeyword, "function"},
				{CategoryIdentifier, "f"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "s"},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, "{"},
				{CategoryKeyword, "return"},
				{CategoryRegularExpression, "/x/"},
				{CategoryPunctuator, "."},
				{CategoryIdentifier, "test"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "s"},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, ";"},
				{CategoryPunctuator, "}"},
			},
		},
		{
			name: "regular expression after if condition",
			src:  "if (a) /'/.test(s);",
			want: []want{
				{CategoryKeyword, "if"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "a"},
				{CategoryPunctuator, ")"},
				{CategoryRegularExpression, "/'/"},
				{CategoryPunctuator, "."},
				{CategoryIdentifier, "test"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "s"},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "regular expression after while condition",
			src:  "while (a) /x/g.exec(s);",
			want: []want{
				{CategoryKeyword, "while"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "a"},
				{CategoryPunctuator, ")"},
				{CategoryRegularExpression, "/x/g"},
				{CategoryPunctuator, "."},
				{CategoryIdentifier, "exec"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "s"},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "regular expression after function declaration",
			src:  "function f(){}\n/'/.test(s);",
			want: []want{
				{CategoryKeyword, "function"},
				{CategoryIdentifier, "f"},
				{CategoryPunctuator, "("},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, "{"},
				{CategoryPunctuator, "}"},
				{CategoryRegularExpression, "/'/"},
				{CategoryPunctuator, "."},
				{CategoryIdentifier, "test"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "s"},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "regular expression after block",
			src:  "{}\n/x/.test(s);",
			want: []want{
				{CategoryPunctuator, "{"},
				{CategoryPunctuator, "}"},
				{CategoryRegularExpression, "/x/"},
				{CategoryPunctuator, "."},
				{CategoryIdentifier, "test"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "s"},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "division after call and function expression",
			src:  "x = f(a) / function(){} / {};",
			want: []want{
				{CategoryIdentifier, "x"},
				{CategoryPunctuator, "="},
				{CategoryIdentifier, "f"},
				{CategoryPunctuator, "("},
				{CategoryIdentifier, "a"},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, "/"},
				{CategoryKeyword, "function"},
				{CategoryPunctuator, "("},
				{CategoryPunctuator, ")"},
				{CategoryPunctuator, "{"},
				{CategoryPunctuator, "}"},
				{CategoryPunctuator, "/"},
				{CategoryPunctuator, "{"},
				{CategoryPunctuator, "}"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "template literal",
			src:  "s = `hi ${name}!`;",
			want: []want{
				{CategoryIdentifier, "s"},
				{CategoryPunctuator, "="},
				{CategoryTemplate, "`hi ${"},
				{CategoryIdentifier, "name"},
				{CategoryTemplate, "}!`"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "comments are dropped",
			src:  "// lead\na /* inner */ = 1;",
			want: []want{
				{CategoryIdentifier, "a"},
				{CategoryPunctuator, "="},
				{CategoryNumeric, "1"},
				{CategoryPunctuator, ";"},
			},
		},
		{
			name: "empty source",
			src:  "",
			want: []want{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewJavaScript().Tokenize(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertTokens(t, got, tt.want)
		})
	}
}

// TestJavaScriptComments tests comment emission.
func TestJavaScriptComments(t *testing.T) {
	t.Parallel()

	got, err := NewJavaScript(WithComments(true)).Tokenize("// lead\na /* inner */ = 1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTokens(t, got, []want{
		{CategoryLineComment, "// lead"},
		{CategoryIdentifier, "a"},
		{CategoryBlockComment, "/* inner */"},
		{CategoryPunctuator, "="},
		{CategoryNumeric, "1"},
		{CategoryPunctuator, ";"},
	})
}

// TestJavaScriptRanges tests that token ranges point into the source.
func TestJavaScriptRanges(t *testing.T) {
	t.Parallel()

	src := "if (a) {\n  b = /re/i.exec(\"ä\");\n}"
	got, err := NewJavaScript().Tokenize(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tok := range got {
		if src[tok.Range.Start:tok.Range.End] != tok.Text {
			t.Errorf("range %s does not match %q", tok.Range, tok.Text)
		}
	}
}

// TestJavaScriptParseError tests that invalid source fails as a whole.
func TestJavaScriptParseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing expression", "var = ;", 1},
		{"error on second line", "var a = 1;\nvar b = ;", 2},
		{"unterminated string", "var s = 'abc", 1},
		{"unbalanced brace", "function f() {", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := NewJavaScript().Tokenize(tt.src)
			if err == nil {
				t.Fatalf("expected error, got %d tokens", len(tokens))
			}
			if tokens != nil {
				t.Errorf("expected no tokens, got %d", len(tokens))
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Line != tt.line {
				t.Errorf("expected line %d, got %d (%v)", tt.line, perr.Line, perr)
			}
			if perr.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}
