// Package tinycl parses TinyCL programs into a typed syntax tree.
//
// Source text is matched by the tinypeg engine against the TinyCL
// grammar, and the untyped match tree is then rebuilt into nodes.
// The grammar only recognizes operators, so precedence and
// associativity of expressions are recovered while rebuilding them.
package tinycl

import (
	"errors"
	"log/slog"
	"sync"

	peg "github.com/clarete/tinypeg"
)

// Parser reads TinyCL source text.  It's safe for concurrent use.
type Parser struct {
	matcher *peg.GrammarMatcher
}

// NewParser returns a parser whose matcher is configured with `cfg`.
// A nil logger keeps slog's default one.
func NewParser(cfg *peg.Config, logger *slog.Logger) (*Parser, error) {
	m, err := peg.MatcherFromGrammar(grammar, cfg)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		m.SetLogger(logger)
	}
	return &Parser{matcher: m}, nil
}

// Parse reads a whole program
func (p *Parser) Parse(src string) (*Program, error) {
	n, err := p.ParseRule("Program", src)
	if err != nil {
		return nil, err
	}
	return n.(*Program), nil
}

// ParseRule matches `src` against the grammar rule named `rule` and
// builds the node it describes
func (p *Parser) ParseRule(rule, src string) (Node, error) {
	value, _, err := p.matcher.MatchRule(rule, src)
	if err != nil {
		return nil, err
	}
	n, err := Build(rule, value)
	if err != nil {
		var rerr *ReconstructionError
		if errors.As(err, &rerr) {
			rerr.Location = peg.LocationAt(src, rerr.Offset)
		}
		return nil, err
	}
	return n, nil
}

// ParseExpression reads a single expression
func (p *Parser) ParseExpression(src string) (Expr, error) {
	n, err := p.ParseRule("Expression", src)
	if err != nil {
		return nil, err
	}
	return n.(Expr), nil
}

// defaultParser is built on first use and shared by the package
// level functions
var defaultParser = sync.OnceValue(func() *Parser {
	p, err := NewParser(peg.NewConfig(), nil)
	if err != nil {
		// the default configuration doesn't validate the grammar
		panic(err)
	}
	return p
})

// Parse reads a whole program with the default configuration
func Parse(src string) (*Program, error) {
	return defaultParser().Parse(src)
}

// ParseRule matches `src` against `rule` with the default
// configuration
func ParseRule(rule, src string) (Node, error) {
	return defaultParser().ParseRule(rule, src)
}

// ParseExpression reads a single expression with the default
// configuration
func ParseExpression(src string) (Expr, error) {
	return defaultParser().ParseExpression(src)
}
