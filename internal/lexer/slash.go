package lexer

import "github.com/tdewolff/parse/v2/js"

// frameKind classifies an open bracket.
type frameKind int

const (
	frameTop frameKind = iota
	frameParen
	frameHeader // parenthesized head of if, while, for, with, switch or catch
	frameBlock
	frameObject
	frameFuncExpr // body of a function or class expression
	frameBracket
)

// frame is one level of bracket nesting.
type frame struct {
	kind frameKind

	// ternaries counts '?' still waiting for their ':'.
	ternaries int

	// pending is set after a function or class keyword until its body opens.
	pending bool

	// pendingExpr reports whether the pending function or class is an expression.
	pendingExpr bool

	// pendingClass reports whether the pending body belongs to a class.
	pendingClass bool
}

// slashContext decides whether a '/' starts a regular expression. It looks
// at the previous significant token and, for ')' and '}', at what the
// matching opener belonged to.
type slashContext struct {
	frames []frame

	prev    js.TokenType
	hasPrev bool

	// stmtStart reports whether the next token begins a statement.
	stmtStart bool

	// closed is the kind of the bracket closed by prev, if prev was ')' or '}'.
	closed frameKind
}

func (c *slashContext) top() *frame {
	if len(c.frames) == 0 {
		c.frames = append(c.frames, frame{kind: frameTop})
	}
	return &c.frames[len(c.frames)-1]
}

func (c *slashContext) pop() frameKind {
	if len(c.frames) <= 1 {
		return frameTop
	}
	kind := c.frames[len(c.frames)-1].kind
	c.frames = c.frames[:len(c.frames)-1]
	return kind
}

// regExpAllowed reports whether a '/' at the current position starts a
// regular expression rather than a division.
func (c *slashContext) regExpAllowed() bool {
	if !c.hasPrev {
		return true
	}
	switch c.prev {
	case js.CloseParenToken:
		return c.closed == frameHeader
	case js.CloseBraceToken:
		return c.closed == frameBlock || c.closed == frameTop
	case js.CloseBracketToken,
		js.IncrToken, js.DecrToken,
		js.ThisToken, js.SuperToken, js.TrueToken, js.FalseToken, js.NullToken,
		js.TemplateToken, js.TemplateEndToken:
		return false
	case js.TemplateStartToken, js.TemplateMiddleToken:
		return true
	}
	return js.IsPunctuator(c.prev) || js.IsReservedWord(c.prev)
}

// push records a significant token.
func (c *slashContext) push(tt js.TokenType) {
	c.top()
	start := !c.hasPrev || c.stmtStart
	c.stmtStart = false

	switch tt {
	case js.OpenParenToken:
		kind := frameParen
		if c.hasPrev && isHeaderKeyword(c.prev) {
			kind = frameHeader
		}
		c.frames = append(c.frames, frame{kind: kind})

	case js.CloseParenToken:
		c.closed = c.pop()
		c.stmtStart = c.closed == frameHeader

	case js.OpenBracketToken:
		c.frames = append(c.frames, frame{kind: frameBracket})

	case js.CloseBracketToken:
		c.pop()

	case js.OpenBraceToken:
		kind := c.braceKind(start)
		c.frames = append(c.frames, frame{kind: kind})
		c.stmtStart = kind == frameBlock

	case js.CloseBraceToken:
		c.closed = c.pop()
		c.stmtStart = c.closed == frameBlock

	case js.FunctionToken, js.ClassToken:
		f := c.top()
		f.pending = true
		f.pendingExpr = !start
		f.pendingClass = tt == js.ClassToken

	case js.QuestionToken:
		c.top().ternaries++

	case js.ColonToken:
		f := c.top()
		if f.ternaries > 0 {
			f.ternaries--
		} else {
			// label or case clause
			c.stmtStart = f.kind == frameBlock || f.kind == frameTop
		}

	case js.SemicolonToken, js.ElseToken, js.DoToken, js.TryToken, js.FinallyToken:
		c.stmtStart = true

	case js.AsyncToken, js.ExportToken, js.DefaultToken:
		// prefixes of declarations
		c.stmtStart = start
	}

	c.prev, c.hasPrev = tt, true
}

// braceKind classifies a '{' given whether it appears at a statement start.
func (c *slashContext) braceKind(start bool) frameKind {
	f := c.top()
	if f.pending && (f.pendingClass || c.prev == js.CloseParenToken) {
		f.pending = false
		if f.pendingExpr {
			return frameFuncExpr
		}
		return frameBlock
	}
	switch {
	case start:
		return frameBlock
	case c.prev == js.ArrowToken:
		return frameBlock
	case c.prev == js.CloseParenToken:
		// method body, or the body after a for/while/catch head
		return frameBlock
	}
	return frameObject
}

func isHeaderKeyword(tt js.TokenType) bool {
	switch tt {
	case js.IfToken, js.WhileToken, js.ForToken, js.WithToken, js.SwitchToken, js.CatchToken:
		return true
	}
	return false
}
