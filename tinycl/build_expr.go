package tinycl

import (
	"strconv"
	"strings"

	peg "github.com/clarete/tinypeg"
)

// Level is an expression precedence tier, from the loosest binding
// to the tightest
type Level int

const (
	LevelLogicalOr Level = iota
	LevelLogicalAnd
	LevelEquality
	LevelComparison
	LevelTerm
	LevelFactor
	LevelUnary
	LevelPostfix
	LevelPrimary
)

var levelNames = map[Level]string{
	LevelLogicalOr:  "LogicalOr",
	LevelLogicalAnd: "LogicalAnd",
	LevelEquality:   "Equality",
	LevelComparison: "Comparison",
	LevelTerm:       "Term",
	LevelFactor:     "Factor",
	LevelUnary:      "Unary",
	LevelPostfix:    "Postfix",
	LevelPrimary:    "Primary",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "Level(" + strconv.Itoa(int(l)) + ")"
}

// binaryOperators holds the operators folded at each binary tier
var binaryOperators = map[Level]map[string]bool{
	LevelLogicalOr:  {"||": true},
	LevelLogicalAnd: {"&&": true},
	LevelEquality:   {"==": true, "!=": true},
	LevelComparison: {"<": true, ">": true, "<=": true, ">=": true},
	LevelTerm:       {"+": true, "-": true},
	LevelFactor:     {"*": true, "/": true, "%": true},
}

// levelOfRule maps grammar rules that produce expressions to the
// tier they're built from
func levelOfRule(rule string) (Level, bool) {
	switch rule {
	case "Expression":
		return LevelLogicalOr, true
	case "Boolean", "Number", "String", "Character", "Identifier":
		return LevelPrimary, true
	}
	for level, name := range levelNames {
		if name == rule {
			return level, true
		}
	}
	return 0, false
}

// buildLevel builds the expression spelled by `toks` starting at the
// tier `level`.  Empty token lists are always an error.
func buildLevel(level Level, toks []*peg.ValueToken) (Expr, error) {
	if len(toks) == 0 {
		return nil, newReconstructionError(level.String(), 0, "empty expression")
	}
	switch {
	case level <= LevelFactor:
		return buildBinary(level, toks)
	case level == LevelUnary:
		return buildUnary(toks)
	case level == LevelPostfix:
		return buildPostfix(toks)
	default:
		return buildPrimary(toks)
	}
}

// buildBinary splits `toks` on the operators of `level` found outside
// of any brackets, builds each operand with the next tier and folds
// them from the left, so `10 - 3 - 2` reads `(10 - 3) - 2`
func buildBinary(level Level, toks []*peg.ValueToken) (Expr, error) {
	ops := binaryOperators[level]
	var splits []int
	depth := 0
	for i, tok := range toks {
		switch tok.Value {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		default:
			if depth == 0 && ops[tok.Value] && i > 0 && endsOperand(toks[i-1]) {
				splits = append(splits, i)
			}
		}
	}
	if len(splits) == 0 {
		return buildLevel(level+1, toks)
	}

	acc, err := buildLevel(level+1, toks[:splits[0]])
	if err != nil {
		return nil, err
	}
	for k, at := range splits {
		end := len(toks)
		if k+1 < len(splits) {
			end = splits[k+1]
		}
		if at+1 == end {
			return nil, newReconstructionError(level.String(), toks[at].Range().Start,
				"missing right operand of %q", toks[at].Value)
		}
		right, err := buildLevel(level+1, toks[at+1:end])
		if err != nil {
			return nil, err
		}
		acc = &BinaryOp{
			node:  node{peg.NewRange(toks[0].Range().Start, toks[end-1].Range().End)},
			Op:    toks[at].Value,
			Left:  acc,
			Right: right,
		}
	}
	return acc, nil
}

// endsOperand tells whether `tok` can be the last token of an
// operand, which is what makes a following `-` a subtraction instead
// of a negation
func endsOperand(tok *peg.ValueToken) bool {
	switch tok.Value {
	case ")", "]":
		return true
	}
	return isOperandToken(tok.Value)
}

func isOperandToken(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '"' || c == '\'' || c == '_' || isDigit(c) || isLetter(c)
}

func buildUnary(toks []*peg.ValueToken) (Expr, error) {
	switch op := toks[0].Value; op {
	case "!", "-":
		operand, err := buildLevel(LevelUnary, toks[1:])
		if err != nil {
			return nil, err
		}
		return &UnaryOp{node: node{spanOf(toks)}, Op: op, Operand: operand}, nil
	}
	return buildLevel(LevelPostfix, toks)
}

// buildPostfix builds the primary expression at the head of `toks`
// and wraps it in one ArrayAccess per `[ index ]` group that follows,
// from left to right
func buildPostfix(toks []*peg.ValueToken) (Expr, error) {
	end, err := primaryExtent(toks)
	if err != nil {
		return nil, err
	}
	expr, err := buildPrimary(toks[:end])
	if err != nil {
		return nil, err
	}
	for rest := toks[end:]; len(rest) > 0; {
		if rest[0].Value != "[" {
			return nil, newReconstructionError(LevelPostfix.String(), rest[0].Range().Start,
				"unexpected token %q", rest[0].Value)
		}
		closing := matching(rest, 0)
		if closing < 0 {
			return nil, newReconstructionError(LevelPostfix.String(), rest[0].Range().Start, "unbalanced `[`")
		}
		index, err := buildLevel(LevelLogicalOr, rest[1:closing])
		if err != nil {
			return nil, err
		}
		expr = &ArrayAccess{
			node:  node{peg.NewRange(toks[0].Range().Start, rest[closing].Range().End)},
			Array: expr,
			Index: index,
		}
		rest = rest[closing+1:]
	}
	return expr, nil
}

// primaryExtent returns how many tokens at the head of `toks` belong
// to the primary expression
func primaryExtent(toks []*peg.ValueToken) (int, error) {
	at := 0
	switch {
	case toks[0].Value == "(" || toks[0].Value == "[":
	case len(toks) > 1 && toks[1].Value == "(" && isIdentifier(toks[0].Value):
		at = 1
	default:
		return 1, nil
	}
	closing := matching(toks, at)
	if closing < 0 {
		return 0, newReconstructionError(LevelPrimary.String(), toks[at].Range().Start,
			"unbalanced %q", toks[at].Value)
	}
	return closing + 1, nil
}

func buildPrimary(toks []*peg.ValueToken) (Expr, error) {
	first, last := toks[0], toks[len(toks)-1]
	switch {
	case first.Value == "(" && last.Value == ")" && matching(toks, 0) == len(toks)-1:
		return buildLevel(LevelLogicalOr, toks[1:len(toks)-1])

	case first.Value == "[" && last.Value == "]" && matching(toks, 0) == len(toks)-1:
		elements, err := buildArguments("ArrayLiteral", first.Range().Start, toks[1:len(toks)-1])
		if err != nil {
			return nil, err
		}
		return &ArrayLiteral{node: node{spanOf(toks)}, Elements: elements}, nil

	case len(toks) > 2 && isIdentifier(first.Value) && toks[1].Value == "(" && matching(toks, 1) == len(toks)-1:
		args, err := buildArguments("FunctionCall", first.Range().Start, toks[2:len(toks)-1])
		if err != nil {
			return nil, err
		}
		return &FunctionCallExpr{node: node{spanOf(toks)}, Name: first.Value, Args: args}, nil

	case len(toks) == 1:
		return buildLiteral(first)
	}
	return nil, newReconstructionError(LevelPrimary.String(), first.Range().Start,
		"unexpected tokens %q", tokenTexts(toks))
}

// buildArguments builds the comma separated expressions in `toks`.
// No tokens means no arguments.
func buildArguments(level string, offset int, toks []*peg.ValueToken) ([]Expr, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	var (
		args  []Expr
		depth int
		start int
	)
	flush := func(end int) error {
		if start == end {
			return newReconstructionError(level, offset, "empty argument")
		}
		arg, err := buildLevel(LevelLogicalOr, toks[start:end])
		if err != nil {
			return err
		}
		args = append(args, arg)
		return nil
	}
	for i, tok := range toks {
		switch tok.Value {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case ",":
			if depth == 0 {
				if err := flush(i); err != nil {
					return nil, err
				}
				start = i + 1
			}
		}
	}
	if err := flush(len(toks)); err != nil {
		return nil, err
	}
	return args, nil
}

// buildLiteral classifies a single token by its text
func buildLiteral(tok *peg.ValueToken) (Expr, error) {
	s, n := tok.Value, node{tok.Range()}
	switch {
	case s == "true" || s == "false":
		return &Boolean{node: n, Value: s == "true"}, nil

	case isNumber(s):
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, newReconstructionError(LevelPrimary.String(), tok.Range().Start,
				"number %s out of range", s)
		}
		return &Number{node: n, Value: v}, nil

	case len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"':
		return &String{node: n, Value: unescape(s[1 : len(s)-1])}, nil

	case len(s) >= 3 && s[0] == '\'' && s[len(s)-1] == '\'':
		r := []rune(unescape(s[1 : len(s)-1]))
		if len(r) != 1 {
			return nil, newReconstructionError(LevelPrimary.String(), tok.Range().Start,
				"invalid character literal %s", s)
		}
		return &Character{node: n, Value: r[0]}, nil

	case isIdentifier(s):
		return &Identifier{node: n, Name: s}, nil
	}
	return nil, newReconstructionError(LevelPrimary.String(), tok.Range().Start, "unexpected token %q", s)
}

// unescape resolves the backslash escapes allowed in string and
// character literals.  Unknown escapes are kept as they are.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"', '\'':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// matching returns the index of the bracket closing the one at
// `toks[open]`, or -1 if it's never closed
func matching(toks []*peg.ValueToken, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Value {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func spanOf(toks []*peg.ValueToken) peg.Range {
	return peg.NewRange(toks[0].Range().Start, toks[len(toks)-1].Range().End)
}

func tokenTexts(toks []*peg.ValueToken) string {
	items := make([]string, len(toks))
	for i, tok := range toks {
		items[i] = tok.Value
	}
	return strings.Join(items, " ")
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" || !(isLetter(s[0]) || s[0] == '_') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !(isLetter(s[i]) || isDigit(s[i]) || s[i] == '_') {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
