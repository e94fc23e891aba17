package tinypeg

import (
	"fmt"
	"sort"
	"strings"
)

// Rule binds a name to the expression it matches
type Rule struct {
	Name string
	Body Expression
}

func NewRule(name string, body Expression) *Rule {
	return &Rule{Name: name, Body: body}
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s <- %s", r.Name, r.Body)
}

// Grammar is an immutable, ordered set of rules.  The first rule is
// the start rule.  It's safe to share a single grammar between
// concurrent matchers since nothing in here is ever written after
// construction.
type Grammar struct {
	Name  string
	rules []*Rule
	index map[string]*Rule
}

// NewGrammar builds the name index of `rules`.  It never fails:
// references to rules that don't exist are only reported when they
// are matched, or by calling `Validate`.  When a name is declared
// more than once, the first declaration wins.
func NewGrammar(name string, rules ...*Rule) *Grammar {
	index := make(map[string]*Rule, len(rules))
	for _, rule := range rules {
		if _, ok := index[rule.Name]; !ok {
			index[rule.Name] = rule
		}
	}
	return &Grammar{Name: name, rules: rules, index: index}
}

// Rule returns the rule named `name`
func (g *Grammar) Rule(name string) (*Rule, bool) {
	r, ok := g.index[name]
	return r, ok
}

// Rules returns the rules in the order they were declared
func (g *Grammar) Rules() []*Rule {
	rules := make([]*Rule, len(g.rules))
	copy(rules, g.rules)
	return rules
}

// Start returns the first rule of the grammar, or nil for an empty
// grammar
func (g *Grammar) Start() *Rule {
	if len(g.rules) == 0 {
		return nil
	}
	return g.rules[0]
}

func (g *Grammar) String() string {
	var s strings.Builder
	for i, rule := range g.rules {
		if i > 0 {
			s.WriteString("\n")
		}
		s.WriteString(rule.String())
	}
	return s.String()
}

// GrammarError lists the problems found by `Validate`
type GrammarError struct {
	Grammar  string
	Problems []string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("grammar %s: %s", e.Grammar, strings.Join(e.Problems, "; "))
}

// Validate checks eagerly what the matcher would only report when
// reaching it: references to undefined rules.  It also reports rules
// declared more than once and empty grammars.
func (g *Grammar) Validate() error {
	var problems []string

	if len(g.rules) == 0 {
		problems = append(problems, "no rules declared")
	}

	seen := make(map[string]struct{}, len(g.rules))
	undefined := map[string]struct{}{}
	for _, rule := range g.rules {
		if _, ok := seen[rule.Name]; ok {
			problems = append(problems, fmt.Sprintf("rule `%s` declared more than once", rule.Name))
		}
		seen[rule.Name] = struct{}{}
		walkExpression(rule.Body, func(e Expression) {
			if ref, ok := e.(*ReferenceExpr); ok {
				if _, ok := g.index[ref.Name]; !ok {
					undefined[ref.Name] = struct{}{}
				}
			}
		})
	}

	names := make([]string, 0, len(undefined))
	for name := range undefined {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		problems = append(problems, fmt.Sprintf("undefined rule: `%s`", name))
	}

	if len(problems) > 0 {
		return &GrammarError{Grammar: g.Name, Problems: problems}
	}
	return nil
}

// walkExpression calls `fn` for `e` and all of its sub-expressions,
// depth first.  It doesn't follow references.
func walkExpression(e Expression, fn func(Expression)) {
	fn(e)
	switch n := e.(type) {
	case *SequenceExpr:
		for _, item := range n.Items {
			walkExpression(item, fn)
		}
	case *ChoiceExpr:
		for _, item := range n.Items {
			walkExpression(item, fn)
		}
	case *ZeroOrMoreExpr:
		walkExpression(n.Expr, fn)
	case *OneOrMoreExpr:
		walkExpression(n.Expr, fn)
	case *OptionalExpr:
		walkExpression(n.Expr, fn)
	case *AndExpr:
		walkExpression(n.Expr, fn)
	case *NotExpr:
		walkExpression(n.Expr, fn)
	}
}
