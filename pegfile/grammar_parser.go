package pegfile

import (
	"fmt"
	"strings"

	"github.com/clarete/tinypeg"
)

type GrammarParser struct {
	BaseParser
	name string
}

// NewGrammarParser creates a parser for the grammar notation in
// `grammar`.  The grammar it outputs is named after `name`.
func NewGrammarParser(name, grammar string) *GrammarParser {
	return &GrammarParser{BaseParser: newBaseParser(grammar), name: name}
}

// Parse kicks off parsing the input string and builds the grammar it
// describes
func (p *GrammarParser) Parse() (*tinypeg.Grammar, error) {
	return p.ParseGrammar()
}

// GR: Grammar <- Spacing Definition+ EndOfFile
func (p *GrammarParser) ParseGrammar() (*tinypeg.Grammar, error) {
	p.ParseSpacing()
	defs, err := OneOrMore(p, func(p Parser) (*tinypeg.Rule, error) {
		return p.(*GrammarParser).ParseDefinition()
	})
	if err != nil {
		return nil, p.failure(err)
	}
	if p.Peek() != eof {
		return nil, p.failure(nil)
	}
	return tinypeg.NewGrammar(p.name, defs...), nil
}

// failure picks the error worth reporting when the grammar can't be
// parsed.  Thrown errors go as they are, otherwise the error that
// happened farthest into the input is the best guess.
func (p *GrammarParser) failure(err error) error {
	if err != nil && isthrown(err) {
		return err
	}
	if p.farthest != nil {
		return &GrammarError{Message: p.farthest.Message, Location: p.farthest.Location}
	}
	return &GrammarError{Message: "Expected definition", Location: p.Location()}
}

// GR: Definition <- Identifier LEFTARROW Expression
func (p *GrammarParser) ParseDefinition() (*tinypeg.Rule, error) {
	identifier, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.ParseSpacing()
	if err := p.ParseLeftArrow(); err != nil {
		return nil, err
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return tinypeg.NewRule(identifier, expr), nil
}

// GR: Expression <- Sequence (SLASH Sequence)*
func (p *GrammarParser) ParseExpression() (tinypeg.Expression, error) {
	head, err := p.ParseSequence()
	if err != nil {
		return nil, err
	}
	tail, err := ZeroOrMore(p, func(p Parser) (tinypeg.Expression, error) {
		if _, err := p.ExpectRune('/'); err != nil {
			return nil, err
		}
		p.(*GrammarParser).ParseSpacing()

		return p.(*GrammarParser).ParseSequence()
	})
	if err != nil {
		return nil, err
	}
	if len(tail) == 0 {
		return head, nil
	}
	items := append([]tinypeg.Expression{head}, tail...)
	return tinypeg.Choice(items...), nil
}

// GR: Sequence <- Prefix*
func (p *GrammarParser) ParseSequence() (tinypeg.Expression, error) {
	items, err := ZeroOrMore(p, func(p Parser) (tinypeg.Expression, error) {
		return p.(*GrammarParser).ParsePrefix()
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return tinypeg.Sequence(items...), nil
}

// GR: Prefix <- (AND / NOT)? Suffix
func (p *GrammarParser) ParsePrefix() (tinypeg.Expression, error) {
	prefix, err := Choice(p, []ParserFn[rune]{
		p.ExpectRuneFn('&'),
		p.ExpectRuneFn('!'),
		func(p Parser) (rune, error) { return 0, nil },
	})
	if err != nil {
		return nil, err
	}
	if prefix != 0 {
		p.ParseSpacing()
	}
	suffix, err := p.ParseSuffix()
	if err != nil {
		return nil, err
	}
	switch prefix {
	case '&':
		return tinypeg.AndPredicate(suffix), nil
	case '!':
		return tinypeg.NotPredicate(suffix), nil
	default:
		return suffix, nil
	}
}

// GR: Suffix <- Primary (QUESTION / STAR / PLUS)?
//
// A class, a dot or a raw pattern followed right away by a suffix is
// a single token: `[0-9]+` becomes the pattern `[0-9]+` instead of a
// repetition of `[0-9]`, which would skip spaces between digits.
func (p *GrammarParser) ParseSuffix() (tinypeg.Expression, error) {
	grouped := p.Peek() == '('
	primary, err := p.ParsePrimary()
	if err != nil {
		return nil, err
	}
	start := p.Location()
	suffix, err := Choice(p, []ParserFn[rune]{
		p.ExpectRuneFn('?'),
		p.ExpectRuneFn('*'),
		p.ExpectRuneFn('+'),
		func(p Parser) (rune, error) { return 0, nil },
	})
	if err != nil {
		return nil, err
	}

	p.ParseSpacing()

	if class, ok := primary.(*tinypeg.CharClassExpr); ok && suffix != 0 && !grouped {
		pattern := class.Pattern
		if !strings.HasPrefix(pattern, "[") {
			pattern = "(?:" + pattern + ")"
		}
		fused, err := tinypeg.CompileCharClass(pattern + string(suffix))
		if err != nil {
			p.Backtrack(start)
			return nil, p.Throw(fmt.Sprintf("Invalid pattern: %s", err))
		}
		return fused, nil
	}

	switch suffix {
	case '?':
		return tinypeg.Optional(primary), nil
	case '*':
		return tinypeg.ZeroOrMore(primary), nil
	case '+':
		return tinypeg.OneOrMore(primary), nil
	default:
		return primary, nil
	}
}

// GR: Primary <- Identifier !LEFTARROW
// GR:          / OPEN Expression CLOSE
// GR:          / Literal / Class / DOT / Raw
func (p *GrammarParser) ParsePrimary() (tinypeg.Expression, error) {
	return Choice(p, []ParserFn[tinypeg.Expression]{
		func(p Parser) (tinypeg.Expression, error) { return p.(*GrammarParser).ParseIdentifier() },
		func(p Parser) (tinypeg.Expression, error) { return p.(*GrammarParser).ParseParenExpression() },
		func(p Parser) (tinypeg.Expression, error) { return p.(*GrammarParser).ParseLiteral() },
		func(p Parser) (tinypeg.Expression, error) { return p.(*GrammarParser).ParseClass() },
		func(p Parser) (tinypeg.Expression, error) { return p.(*GrammarParser).ParseDot() },
		func(p Parser) (tinypeg.Expression, error) { return p.(*GrammarParser).ParseRaw() },
	})
}

// GR: Identifier <- IdentStart IdentCont* Spacing
// GR: IdentStart <- [a-zA-Z_]
// GR: IdentCont  <- IdentStart / [0-9]
func (p *GrammarParser) ParseIdentifier() (tinypeg.Expression, error) {
	value, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.ParseSpacing()

	if _, err := Not(p, func(p Parser) (tinypeg.Expression, error) {
		return nil, p.(*GrammarParser).ParseLeftArrow()
	}); err != nil {
		return nil, err
	}

	return tinypeg.Reference(value), nil
}

func (p *GrammarParser) parseIdentifier() (string, error) {
	head, err := Choice(p, []ParserFn[rune]{
		p.ExpectRangeFn('a', 'z'),
		p.ExpectRangeFn('A', 'Z'),
		p.ExpectRuneFn('_'),
	})
	if err != nil {
		return "", err
	}
	tail, err := ZeroOrMore(p, func(p Parser) (rune, error) {
		return Choice(p, []ParserFn[rune]{
			p.ExpectRangeFn('a', 'z'),
			p.ExpectRangeFn('A', 'Z'),
			p.ExpectRangeFn('0', '9'),
			p.ExpectRuneFn('_'),
		})
	})
	if err != nil {
		return "", err
	}

	return string(append([]rune{head}, tail...)), nil
}

// GR: LEFTARROW <- ('<-' / '=') Spacing
func (p *GrammarParser) ParseLeftArrow() error {
	_, err := Choice(p, []ParserFn[rune]{
		func(p Parser) (rune, error) {
			if _, err := p.ExpectRune('<'); err != nil {
				return 0, err
			}
			return p.ExpectRune('-')
		},
		p.ExpectRuneFn('='),
	})
	if err != nil {
		return err
	}
	p.ParseSpacing()
	return nil
}

func (p *GrammarParser) ParseParenExpression() (tinypeg.Expression, error) {
	if _, err := p.ExpectRune('('); err != nil {
		return nil, err
	}
	p.ParseSpacing()

	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.ExpectRune(')'); err != nil {
		return nil, err
	}

	return expr, nil
}

// GR: Class <- '[' (!']' ('\\' . / .))* ']'
//
// The class is handed over to the pattern engine as it was written,
// escapes included.
func (p *GrammarParser) ParseClass() (tinypeg.Expression, error) {
	start := p.Location()
	if _, err := p.ExpectRune('['); err != nil {
		return nil, err
	}
	body, err := ZeroOrMore(p, func(p Parser) (string, error) {
		if _, err := Not(p, p.ExpectRuneFn(']')); err != nil {
			return "", err
		}
		c, err := p.Any()
		if err != nil {
			return "", err
		}
		if c != '\\' {
			return string(c), nil
		}
		escaped, err := p.Any()
		if err != nil {
			return "", err
		}
		return string([]rune{c, escaped}), nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectRune(']'); err != nil {
		return nil, err
	}
	return p.compilePattern("["+strings.Join(body, "")+"]", start)
}

func (p *GrammarParser) ParseDot() (tinypeg.Expression, error) {
	if _, err := p.ExpectRune('.'); err != nil {
		return nil, err
	}
	return tinypeg.CharClass(`(?s).`), nil
}

// GR: Raw <- '`' (!'`' .)* '`'
func (p *GrammarParser) ParseRaw() (tinypeg.Expression, error) {
	start := p.Location()
	if _, err := p.ExpectRune('`'); err != nil {
		return nil, err
	}
	body, err := ZeroOrMore(p, func(p Parser) (rune, error) {
		if _, err := Not(p, p.ExpectRuneFn('`')); err != nil {
			return 0, err
		}
		return p.Any()
	})
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectRune('`'); err != nil {
		return nil, err
	}
	return p.compilePattern(string(body), start)
}

func (p *GrammarParser) compilePattern(pattern string, start tinypeg.Location) (tinypeg.Expression, error) {
	class, err := tinypeg.CompileCharClass(pattern)
	if err != nil {
		p.Backtrack(start)
		return nil, p.Throw(fmt.Sprintf("Invalid pattern `%s`: %s", pattern, err))
	}
	return class, nil
}

// GR: Literal <- ['] (!['] Char)* [']
// GR:          / ["] (!["] Char)* ["]
func (p *GrammarParser) ParseLiteral() (tinypeg.Expression, error) {
	value, err := Choice(p, []ParserFn[string]{
		func(p Parser) (string, error) { return p.(*GrammarParser).parseQuoted('\'') },
		func(p Parser) (string, error) { return p.(*GrammarParser).parseQuoted('"') },
	})
	if err != nil {
		return nil, err
	}
	return tinypeg.Literal(value), nil
}

func (p *GrammarParser) parseQuoted(quote rune) (string, error) {
	if _, err := p.ExpectRune(quote); err != nil {
		return "", err
	}
	s, err := ZeroOrMore(p, func(p Parser) (rune, error) {
		if _, err := Not(p, p.ExpectRuneFn(quote)); err != nil {
			return 0, err
		}
		return p.(*GrammarParser).parseChar()
	})
	if err != nil {
		return "", err
	}
	if _, err := p.ExpectRune(quote); err != nil {
		return "", err
	}
	return string(s), nil
}

// GR: Char <- '\\' [nrt'"\\] / !'\\' .
func (p *GrammarParser) parseChar() (rune, error) {
	c, err := p.Any()
	if err != nil {
		return 0, err
	}
	if c != '\\' {
		return c, nil
	}
	escaped, err := p.Any()
	if err != nil {
		return 0, err
	}
	switch escaped {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '\'', '"', '\\':
		return escaped, nil
	default:
		return 0, p.NewError(fmt.Sprintf("Unknown escape sequence \\%c", escaped))
	}
}

// GR: Spacing <- (Space / Comment)*
// GR: Space   <- ' ' / '\t' / '\r' / '\n'
// GR: Comment <- '#' (!'\n' .)*
func (p *GrammarParser) ParseSpacing() {
	ZeroOrMore(p, func(p Parser) (rune, error) {
		return Choice(p, []ParserFn[rune]{
			func(p Parser) (rune, error) {
				return ChoiceRune(p, []rune{' ', '\t', '\r', '\n'})
			},
			func(p Parser) (rune, error) {
				if _, err := p.ExpectRune('#'); err != nil {
					return 0, err
				}
				ZeroOrMore(p, func(p Parser) (rune, error) {
					if _, err := Not(p, p.ExpectRuneFn('\n')); err != nil {
						return 0, err
					}
					return p.Any()
				})
				return '#', nil
			},
		})
	})
}
