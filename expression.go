package tinypeg

import (
	"regexp/syntax"
	"strings"
	"unicode/utf8"

	re2 "github.com/wasilibs/go-re2"
)

// ExprKind enumerates the closed set of grammar combinators
type ExprKind int

const (
	KindLiteral ExprKind = iota
	KindCharClass
	KindSequence
	KindChoice
	KindZeroOrMore
	KindOneOrMore
	KindOptional
	KindAndPredicate
	KindNotPredicate
	KindReference
)

var exprKindNames = map[ExprKind]string{
	KindLiteral:      "Literal",
	KindCharClass:    "CharClass",
	KindSequence:     "Sequence",
	KindChoice:       "Choice",
	KindZeroOrMore:   "ZeroOrMore",
	KindOneOrMore:    "OneOrMore",
	KindOptional:     "Optional",
	KindAndPredicate: "AndPredicate",
	KindNotPredicate: "NotPredicate",
	KindReference:    "Reference",
}

func (k ExprKind) String() string { return exprKindNames[k] }

// Expression is the interface implemented by all grammar
// combinators.  The set of implementations is closed: the matcher
// dispatches over them with a single type switch.
type Expression interface {
	// Kind returns which combinator this expression is
	Kind() ExprKind

	// String returns the expression written in PEG notation
	String() string

	expression()
}

// Node Type: Literal

type LiteralExpr struct {
	Value string
}

// Literal matches the exact text `v`
func Literal(v string) *LiteralExpr { return &LiteralExpr{Value: v} }

func (e *LiteralExpr) Kind() ExprKind { return KindLiteral }
func (e *LiteralExpr) String() string { return "'" + escapeLiteral(e.Value) + "'" }
func (*LiteralExpr) expression()      {}

// Node Type: CharClass

type CharClassExpr struct {
	Pattern string
	re      *re2.Regexp

	// width bounds how much input the regex engine gets to see,
	// and scan replaces it altogether when the pattern allows
	width int
	scan  scanner
}

// CharClass matches the longest prefix of the input, at the cursor
// position, that satisfies `pattern`.  It panics if the pattern can't
// be compiled, which makes it suitable for grammars built statically.
func CharClass(pattern string) *CharClassExpr {
	e, err := CompileCharClass(pattern)
	if err != nil {
		panic(err)
	}
	return e
}

// CompileCharClass is the error returning version of CharClass
func CompileCharClass(pattern string) (*CharClassExpr, error) {
	re, err := re2.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, err
	}
	re.Longest()
	e := &CharClassExpr{Pattern: pattern, re: re, width: unbounded}
	if tree, err := syntax.Parse(pattern, syntax.Perl); err == nil {
		tree = tree.Simplify()
		e.width = patternWidth(tree)
		e.scan = newScanner(tree)
	}
	return e, nil
}

// prefix returns the length of the longest prefix of `s` matching
// the pattern, or -1 if there's no match.  The regex engine copies
// its input, so it only gets the bytes a match could span plus one
// rune for `\b` and `$` to look at.
func (e *CharClassExpr) prefix(s string) int {
	if e.scan != nil {
		if n, ok := e.scan.prefix(s); ok {
			return n
		}
	}
	if e.width != unbounded && len(s) > e.width+utf8.UTFMax {
		s = s[:e.width+utf8.UTFMax]
	}
	return e.regexPrefix(s)
}

func (e *CharClassExpr) regexPrefix(s string) int {
	loc := e.re.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return -1
	}
	return loc[1]
}

func (e *CharClassExpr) Kind() ExprKind { return KindCharClass }
func (e *CharClassExpr) String() string { return "`" + e.Pattern + "`" }
func (*CharClassExpr) expression()      {}

// Node Type: Sequence

type SequenceExpr struct {
	Items []Expression
}

func Sequence(items ...Expression) *SequenceExpr { return &SequenceExpr{Items: items} }

func (e *SequenceExpr) Kind() ExprKind { return KindSequence }
func (*SequenceExpr) expression()      {}

func (e *SequenceExpr) String() string {
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		if item.Kind() == KindChoice {
			parts[i] = "(" + item.String() + ")"
			continue
		}
		parts[i] = item.String()
	}
	return strings.Join(parts, " ")
}

// Node Type: Choice

type ChoiceExpr struct {
	Items []Expression
}

func Choice(items ...Expression) *ChoiceExpr { return &ChoiceExpr{Items: items} }

func (e *ChoiceExpr) Kind() ExprKind { return KindChoice }
func (*ChoiceExpr) expression()      {}

func (e *ChoiceExpr) String() string {
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		parts[i] = item.String()
	}
	return strings.Join(parts, " / ")
}

// Node Type: ZeroOrMore

type ZeroOrMoreExpr struct {
	Expr Expression
}

func ZeroOrMore(e Expression) *ZeroOrMoreExpr { return &ZeroOrMoreExpr{Expr: e} }

func (e *ZeroOrMoreExpr) Kind() ExprKind { return KindZeroOrMore }
func (e *ZeroOrMoreExpr) String() string { return operand(e.Expr) + "*" }
func (*ZeroOrMoreExpr) expression()      {}

// Node Type: OneOrMore

type OneOrMoreExpr struct {
	Expr Expression
}

func OneOrMore(e Expression) *OneOrMoreExpr { return &OneOrMoreExpr{Expr: e} }

func (e *OneOrMoreExpr) Kind() ExprKind { return KindOneOrMore }
func (e *OneOrMoreExpr) String() string { return operand(e.Expr) + "+" }
func (*OneOrMoreExpr) expression()      {}

// Node Type: Optional

type OptionalExpr struct {
	Expr Expression
}

func Optional(e Expression) *OptionalExpr { return &OptionalExpr{Expr: e} }

func (e *OptionalExpr) Kind() ExprKind { return KindOptional }
func (e *OptionalExpr) String() string { return operand(e.Expr) + "?" }
func (*OptionalExpr) expression()      {}

// Node Type: And

type AndExpr struct {
	Expr Expression
}

// AndPredicate succeeds without consuming input if `e` matches
func AndPredicate(e Expression) *AndExpr { return &AndExpr{Expr: e} }

func (e *AndExpr) Kind() ExprKind { return KindAndPredicate }
func (e *AndExpr) String() string { return "&" + operand(e.Expr) }
func (*AndExpr) expression()      {}

// Node Type: Not

type NotExpr struct {
	Expr Expression
}

// NotPredicate succeeds without consuming input if `e` does not match
func NotPredicate(e Expression) *NotExpr { return &NotExpr{Expr: e} }

func (e *NotExpr) Kind() ExprKind { return KindNotPredicate }
func (e *NotExpr) String() string { return "!" + operand(e.Expr) }
func (*NotExpr) expression()      {}

// Node Type: Reference

type ReferenceExpr struct {
	Name string
}

// Reference points to the rule `name`.  It's resolved when matched,
// so rules can reference each other in any order.
func Reference(name string) *ReferenceExpr { return &ReferenceExpr{Name: name} }

func (e *ReferenceExpr) Kind() ExprKind { return KindReference }
func (e *ReferenceExpr) String() string { return e.Name }
func (*ReferenceExpr) expression()      {}

// operand wraps composite expressions within parens so they can be
// used under a prefix or a suffix operator
func operand(e Expression) string {
	switch e.Kind() {
	case KindSequence, KindChoice:
		return "(" + e.String() + ")"
	default:
		return e.String()
	}
}

var literalSanitizer = strings.NewReplacer(
	`'`, `\'`,
	`\`, `\\`,
	string('\n'), `\n`,
	string('\r'), `\r`,
	string('\t'), `\t`,
)

func escapeLiteral(s string) string {
	return literalSanitizer.Replace(s)
}
