package tinypeg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionString(t *testing.T) {
	for _, test := range []struct {
		Expr     Expression
		Expected string
	}{
		{Literal("a"), "'a'"},
		{Literal("it's"), `'it\'s'`},
		{CharClass(`[0-9]+`), "`[0-9]+`"},
		{Sequence(Literal("a"), Reference("B")), "'a' B"},
		{Choice(Literal("a"), Literal("b")), "'a' / 'b'"},
		{ZeroOrMore(Sequence(Literal("a"), Literal("b"))), "('a' 'b')*"},
		{OneOrMore(Reference("A")), "A+"},
		{Optional(Choice(Literal("a"), Literal("b"))), "('a' / 'b')?"},
		{AndPredicate(Literal("a")), "&'a'"},
		{NotPredicate(Reference("A")), "!A"},
		{Sequence(Literal("a"), Choice(Literal("b"), Literal("c"))), "'a' ('b' / 'c')"},
	} {
		t.Run(test.Expected, func(t *testing.T) {
			assert.Equal(t, test.Expected, test.Expr.String())
		})
	}
}

func TestKindNames(t *testing.T) {
	for _, test := range []struct {
		Kind     fmt.Stringer
		Expected string
	}{
		{KindLiteral, "Literal"},
		{KindCharClass, "CharClass"},
		{KindNotPredicate, "NotPredicate"},
		{KindReference, "Reference"},
		{ExprKind(99), ""},
		{UndefinedRule, "UndefinedRule"},
		{SequenceFailure, "SequenceFailure"},
		{TrailingInput, "TrailingInput"},
		{FailureKind(99), ""},
		{cfgValType_Bool, "bool"},
		{cfgValType_Int, "int"},
		{cfgValType_String, "string"},
		{cfgValType_Undefined, "undefined"},
	} {
		t.Run(test.Expected, func(t *testing.T) {
			assert.Equal(t, test.Expected, test.Kind.String())
		})
	}

	t.Run("Every expression kind is named", func(t *testing.T) {
		for k := KindLiteral; k <= KindReference; k++ {
			assert.NotEmpty(t, k.String())
		}
		for k := UndefinedRule; k <= TrailingInput; k++ {
			assert.NotEmpty(t, k.String())
		}
	})
}

func TestCompileCharClass(t *testing.T) {
	_, err := CompileCharClass(`[0-9`)
	assert.Error(t, err)
	assert.Panics(t, func() { CharClass(`(`) })

	e, err := CompileCharClass(`a|ab`)
	require.NoError(t, err)
	// the longest alternative wins
	assert.Equal(t, 2, e.prefix("abc"))
	assert.Equal(t, -1, e.prefix("xab"))
}

func TestGrammar(t *testing.T) {
	first := NewRule("A", Literal("a"))
	g := NewGrammar("G", first, NewRule("B", Reference("A")), NewRule("A", Literal("other")))

	assert.Equal(t, first, g.Start())
	r, ok := g.Rule("A")
	require.True(t, ok)
	assert.Same(t, first, r)
	_, ok = g.Rule("C")
	assert.False(t, ok)

	assert.Len(t, g.Rules(), 3)
	assert.Equal(t, "A <- 'a'\nB <- A\nA <- 'other'", g.String())
	assert.Nil(t, NewGrammar("Empty").Start())
}

func TestGrammarValidate(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Grammar  *Grammar
		Problems []string
	}{
		{
			Name: "Valid",
			Grammar: NewGrammar("G",
				NewRule("S", Sequence(Reference("A"), NotPredicate(Reference("A")))),
				NewRule("A", Literal("a")),
			),
		},
		{
			Name:     "Empty",
			Grammar:  NewGrammar("G"),
			Problems: []string{"no rules declared"},
		},
		{
			Name: "Undefined rules are sorted",
			Grammar: NewGrammar("G",
				NewRule("S", Choice(Reference("Z"), Optional(Reference("M")), Reference("Z"))),
			),
			Problems: []string{"undefined rule: `M`", "undefined rule: `Z`"},
		},
		{
			Name: "Duplicated rule",
			Grammar: NewGrammar("G",
				NewRule("S", Literal("a")),
				NewRule("S", Literal("b")),
			),
			Problems: []string{"rule `S` declared more than once"},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			err := test.Grammar.Validate()
			if test.Problems == nil {
				assert.NoError(t, err)
				return
			}
			var gerr *GrammarError
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, "G", gerr.Grammar)
			assert.Equal(t, test.Problems, gerr.Problems)
		})
	}
}
