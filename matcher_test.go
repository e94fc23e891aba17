package tinypeg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matcherFor(t *testing.T, g *Grammar, settings map[string]bool) *GrammarMatcher {
	t.Helper()
	cfg := NewConfig()
	for k, v := range settings {
		cfg.SetBool(k, v)
	}
	m, err := MatcherFromGrammar(g, cfg)
	require.NoError(t, err)
	return m
}

func matchError(t *testing.T, m *GrammarMatcher, input string) *ParsingError {
	t.Helper()
	_, _, err := m.Match(input)
	require.Error(t, err)

	var perr *ParsingError
	require.True(t, errors.As(err, &perr))
	return perr
}

func TestMatchTerminals(t *testing.T) {
	number := NewGrammar("Number", NewRule("Number", CharClass(`[0-9]+`)))

	t.Run("Pattern match", func(t *testing.T) {
		v, cursor, err := matcherFor(t, number, nil).Match("42")
		require.NoError(t, err)
		assert.Equal(t, 2, cursor)
		assert.Equal(t, NewValueToken("42", NewRange(0, 2)), v)
	})

	t.Run("Pattern mismatch", func(t *testing.T) {
		perr := matchError(t, matcherFor(t, number, nil), "abc")
		assert.Equal(t, PatternMismatch, perr.Kind)
		assert.Equal(t, 0, perr.Offset)
		assert.Equal(t, []string{"Number"}, perr.Rules)
		assert.Equal(t, Location{Line: 1, Column: 1, Cursor: 0}, perr.Location)
		assert.Equal(t, "expected pattern `[0-9]+`, found 'abc' @ 1:1 in Number", perr.Error())
	})

	t.Run("Literal mismatch at the end of the input", func(t *testing.T) {
		g := NewGrammar("G", NewRule("S", Sequence(Literal("a"), Literal("b"))))
		perr := matchError(t, matcherFor(t, g, nil), "a")
		assert.Equal(t, SequenceFailure, perr.Kind)
		assert.Equal(t, "expected 'b', found end of input", perr.Message())
		require.Len(t, perr.Causes, 1)
		assert.Equal(t, LiteralMismatch, perr.Causes[0].Kind)
		assert.Equal(t, 1, perr.Causes[0].Offset)
		assert.Equal(t, 1, perr.Offset)
	})
}

func TestMatchErrorPointsAtDeepestFailure(t *testing.T) {
	nested := NewGrammar("G",
		NewRule("A", Sequence(Literal("x"), Reference("B"))),
		NewRule("B", Sequence(Literal("y"), Reference("C"))),
		NewRule("C", Literal("z")),
	)
	choice := NewGrammar("G",
		NewRule("S", Choice(Reference("Pair"), Reference("Single"))),
		NewRule("Pair", Sequence(Literal("a"), Literal(","), Literal("b"))),
		NewRule("Single", Literal("c")),
	)

	for _, test := range []struct {
		Name     string
		Grammar  *Grammar
		Input    string
		Kind     FailureKind
		Offset   int
		Rules    []string
		Location Location
		Error    string
	}{
		{
			Name:     "Three nested rules",
			Grammar:  nested,
			Input:    "x y w",
			Kind:     SequenceFailure,
			Offset:   4,
			Rules:    []string{"A", "B", "C"},
			Location: Location{Line: 1, Column: 5, Cursor: 4},
			Error:    "expected 'z', found 'w' @ 1:5 in A > B > C",
		},
		{
			Name:     "First item of the outer rule",
			Grammar:  nested,
			Input:    "w",
			Kind:     SequenceFailure,
			Offset:   0,
			Rules:    []string{"A"},
			Location: Location{Line: 1, Column: 1, Cursor: 0},
			Error:    "expected 'x', found 'w' @ 1:1 in A",
		},
		{
			Name:     "Choice follows the alternative that went farther",
			Grammar:  choice,
			Input:    "a,x",
			Kind:     ChoiceExhausted,
			Offset:   2,
			Rules:    []string{"S", "Pair"},
			Location: Location{Line: 1, Column: 3, Cursor: 2},
			Error:    "expected one of: Pair, Single @ 1:3 in S > Pair",
		},
		{
			Name:     "Choice stops when alternatives tie",
			Grammar:  choice,
			Input:    "x",
			Kind:     ChoiceExhausted,
			Offset:   0,
			Rules:    []string{"S"},
			Location: Location{Line: 1, Column: 1, Cursor: 0},
			Error:    "expected one of: Pair, Single @ 1:1 in S",
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			for _, memoize := range []bool{true, false} {
				m := matcherFor(t, test.Grammar, map[string]bool{"parser.memoize": memoize})
				perr := matchError(t, m, test.Input)
				assert.Equal(t, test.Kind, perr.Kind)
				assert.Equal(t, test.Offset, perr.Offset)
				assert.Equal(t, test.Rules, perr.Rules)
				assert.Equal(t, test.Location, perr.Location)
				assert.Equal(t, test.Error, perr.Error())
			}
		})
	}
}

func TestMatchChoice(t *testing.T) {
	t.Run("First alternative wins", func(t *testing.T) {
		g := NewGrammar("G", NewRule("S", Choice(Literal("if"), Literal("ifelse"))))
		m := matcherFor(t, g, nil)

		v, _, err := m.Match("if")
		require.NoError(t, err)
		assert.Equal(t, "if", v.Text())

		perr := matchError(t, m, "ifelse")
		assert.Equal(t, TrailingInput, perr.Kind)
		assert.Equal(t, 2, perr.Offset)
		assert.Equal(t, "else", perr.Found)
		assert.Nil(t, perr.Farthest)
	})

	t.Run("All alternatives fail", func(t *testing.T) {
		g := NewGrammar("G",
			NewRule("S", Choice(Reference("Number"), Literal("nil"))),
			NewRule("Number", CharClass(`[0-9]+`)),
		)
		perr := matchError(t, matcherFor(t, g, nil), "x")
		assert.Equal(t, ChoiceExhausted, perr.Kind)
		assert.Equal(t, "expected one of: Number, 'nil'", perr.Message())
		assert.Len(t, perr.Causes, 2)
	})
}

func TestMatchRepetition(t *testing.T) {
	t.Run("Zero matches", func(t *testing.T) {
		g := NewGrammar("G", NewRule("S", ZeroOrMore(Literal("a"))))
		v, _, err := matcherFor(t, g, nil).Match("")
		require.NoError(t, err)

		nodes, ok := v.(*ValueNodes)
		require.True(t, ok)
		assert.Nil(t, nodes.Items)
		assert.Equal(t, NewRange(0, 0), nodes.Range())
	})

	t.Run("One or more needs one", func(t *testing.T) {
		g := NewGrammar("G", NewRule("S", OneOrMore(Literal("a"))))
		perr := matchError(t, matcherFor(t, g, nil), "b")
		assert.Equal(t, RepetitionFailure, perr.Kind)
		assert.Equal(t, "expected at least one 'a'", perr.Message())
	})

	t.Run("Repeating what matches nothing terminates", func(t *testing.T) {
		g := NewGrammar("G", NewRule("S", ZeroOrMore(Optional(Literal("x")))))
		m := matcherFor(t, g, nil)

		v, cursor, err := m.Match("xx")
		require.NoError(t, err)
		assert.Equal(t, 2, cursor)
		assert.Len(t, Tokens(v), 2)

		v, cursor, err = m.Match("")
		require.NoError(t, err)
		assert.Equal(t, 0, cursor)
		assert.Empty(t, Tokens(v))
	})
}

func TestMatchPredicates(t *testing.T) {
	for _, test := range []struct {
		Name    string
		Expr    Expression
		Input   string
		Message string
	}{
		{"And matches", Sequence(AndPredicate(Literal("a")), CharClass(`[a-z]+`)), "abc", ""},
		{"And fails", Sequence(AndPredicate(Literal("a")), CharClass(`[a-z]+`)), "bcd", "predicate &'a' failed, found 'bcd'"},
		{"Not matches", Sequence(NotPredicate(Literal("x")), CharClass(`[a-z]`)), "y", ""},
		{"Not fails", Sequence(NotPredicate(Literal("x")), CharClass(`[a-z]`)), "x", "predicate !'x' failed, found 'x'"},
	} {
		t.Run(test.Name, func(t *testing.T) {
			m := matcherFor(t, NewGrammar("G", NewRule("S", test.Expr)), nil)
			if test.Message == "" {
				v, _, err := m.Match(test.Input)
				require.NoError(t, err)
				// predicates don't consume input
				nodes := v.(*ValueNodes)
				assert.IsType(t, &ValueEmpty{}, nodes.Items[0])
				assert.Equal(t, test.Input, v.Text())
				return
			}
			perr := matchError(t, m, test.Input)
			assert.Equal(t, test.Message, perr.Message())
			require.Len(t, perr.Causes, 1)
			assert.Equal(t, PredicateFailure, perr.Causes[0].Kind)
		})
	}
}

func TestMatchSpaces(t *testing.T) {
	g := NewGrammar("G", NewRule("S", Sequence(Literal("a"), Literal("b"))))

	t.Run("Skipped by default", func(t *testing.T) {
		v, cursor, err := matcherFor(t, g, nil).Match(" a \n b ")
		require.NoError(t, err)
		assert.Equal(t, 7, cursor)
		assert.Equal(t, "ab", v.Text())
	})

	t.Run("Significant when disabled", func(t *testing.T) {
		m := matcherFor(t, g, map[string]bool{"parser.skip_spaces": false})

		_, _, err := m.Match("ab")
		require.NoError(t, err)

		perr := matchError(t, m, "a b")
		assert.Equal(t, "expected 'b', found ' '", perr.Message())
	})
}

func TestMatchReferences(t *testing.T) {
	t.Run("Undefined rule", func(t *testing.T) {
		g := NewGrammar("G", NewRule("S", Reference("Missing")))
		perr := matchError(t, matcherFor(t, g, nil), "x")
		assert.Equal(t, UndefinedRule, perr.Kind)
		assert.Equal(t, "Missing", perr.Expected)
		assert.Equal(t, "undefined rule: `Missing`", perr.Message())
	})

	t.Run("Undefined rule caught by validation", func(t *testing.T) {
		g := NewGrammar("G", NewRule("S", Reference("Missing")))
		cfg := NewConfig()
		cfg.SetBool("grammar.validate", true)
		_, err := MatcherFromGrammar(g, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "undefined rule: `Missing`")
	})

	t.Run("Undefined start rule", func(t *testing.T) {
		g := NewGrammar("G", NewRule("S", Literal("s")))
		_, _, err := matcherFor(t, g, nil).MatchRule("Nope", "s")

		var perr *ParsingError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, UndefinedRule, perr.Kind)
	})

	t.Run("Empty grammar", func(t *testing.T) {
		_, _, err := matcherFor(t, NewGrammar("G"), nil).Match("")
		assert.ErrorIs(t, err, ErrEmptyGrammar)
	})

	t.Run("Start from another rule", func(t *testing.T) {
		g := NewGrammar("G",
			NewRule("Sum", Sequence(Reference("Number"), Literal("+"), Reference("Number"))),
			NewRule("Number", CharClass(`[0-9]+`)),
		)
		v, _, err := matcherFor(t, g, nil).MatchRule("Number", "12")
		require.NoError(t, err)
		assert.Equal(t, "12", v.Text())
	})
}

func TestMatchFarthestFailure(t *testing.T) {
	g := NewGrammar("G",
		NewRule("P", ZeroOrMore(Reference("S"))),
		NewRule("S", Sequence(Literal("a"), Literal(";"))),
	)

	t.Run("Attached to trailing input", func(t *testing.T) {
		perr := matchError(t, matcherFor(t, g, nil), "a;a")
		assert.Equal(t, TrailingInput, perr.Kind)
		assert.Equal(t, 2, perr.Offset)

		require.NotNil(t, perr.Farthest)
		assert.Equal(t, LiteralMismatch, perr.Farthest.Kind)
		assert.Equal(t, ";", perr.Farthest.Expected)
		assert.Equal(t, []string{"P", "S"}, perr.Farthest.Rules)
		assert.Equal(t, Location{Line: 1, Column: 4, Cursor: 3}, perr.Farthest.Location)
	})

	t.Run("Left out when disabled", func(t *testing.T) {
		perr := matchError(t, matcherFor(t, g, map[string]bool{"parser.show_fails": false}), "a;a")
		assert.Equal(t, TrailingInput, perr.Kind)
		assert.Nil(t, perr.Farthest)
	})
}

func TestMatchIsIdempotent(t *testing.T) {
	g := NewGrammar("G",
		NewRule("S", Choice(
			Sequence(Reference("N"), Literal("x")),
			Sequence(Reference("N"), Literal("y")),
		)),
		NewRule("N", CharClass(`[0-9]+`)),
	)
	memo := matcherFor(t, g, nil)
	plain := matcherFor(t, g, map[string]bool{"parser.memoize": false})

	first, _, err := memo.Match("12 y")
	require.NoError(t, err)
	second, _, err := memo.Match("12 y")
	require.NoError(t, err)
	third, _, err := plain.Match("12 y")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, "12y", first.Text())
}

func TestParse(t *testing.T) {
	v, err := Parse(NewGrammar("G", NewRule("S", Literal("ok"))), "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", v.Text())
}
