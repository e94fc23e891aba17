package pegfile

import (
	"fmt"

	"github.com/clarete/tinypeg"
)

const eof = -1

// BaseParser walks the runes of a grammar file keeping track of the
// line and column of its cursor
type BaseParser struct {
	input []rune
	loc   tinypeg.Location

	// farthest is the recoverable error made farthest into the
	// input.  When nothing parses, it's the best guess of what
	// went wrong.
	farthest *backtrackingError
}

func newBaseParser(input string) BaseParser {
	return BaseParser{
		input: []rune(input),
		loc:   tinypeg.Location{Line: 1, Column: 1},
	}
}

func (p *BaseParser) Location() tinypeg.Location { return p.loc }

func (p *BaseParser) Backtrack(l tinypeg.Location) { p.loc = l }

func (p *BaseParser) Peek() rune {
	if p.loc.Cursor >= len(p.input) {
		return eof
	}
	return p.input[p.loc.Cursor]
}

func (p *BaseParser) Any() (rune, error) {
	c := p.Peek()
	if c == eof {
		return 0, p.NewError("Unexpected EOF")
	}
	p.loc.Cursor++
	if c == '\n' {
		p.loc.Line++
		p.loc.Column = 1
	} else {
		p.loc.Column++
	}
	return c, nil
}

func (p *BaseParser) ExpectRune(v rune) (rune, error) {
	if c := p.Peek(); c != v {
		return 0, p.NewError(fmt.Sprintf("Expected %s, got %s", runeText(v), runeText(c)))
	}
	return p.Any()
}

func (p *BaseParser) ExpectRange(l, r rune) (rune, error) {
	if c := p.Peek(); c < l || c > r {
		return 0, p.NewError(fmt.Sprintf("Expected char between %c and %c, got %s", l, r, runeText(c)))
	}
	return p.Any()
}

func (p *BaseParser) ExpectRuneFn(v rune) ParserFn[rune] {
	return func(p Parser) (rune, error) { return p.ExpectRune(v) }
}

func (p *BaseParser) ExpectRangeFn(l, r rune) ParserFn[rune] {
	return func(p Parser) (rune, error) { return p.ExpectRange(l, r) }
}

func (p *BaseParser) NewError(msg string) error {
	err := &backtrackingError{Message: msg, Location: p.loc}
	if p.farthest == nil || p.loc.Cursor > p.farthest.Location.Cursor {
		p.farthest = err
	}
	return err
}

func (p *BaseParser) Throw(msg string) error {
	return &GrammarError{Message: msg, Location: p.loc}
}

func runeText(c rune) string {
	if c == eof {
		return "EOF"
	}
	return fmt.Sprintf("%q", c)
}
