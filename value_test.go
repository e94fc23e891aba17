package tinypeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "3", NewRange(3, 3).String())
		assert.Equal(t, "0..2", NewRange(0, 2).String())
	})

	t.Run("Str", func(t *testing.T) {
		assert.Equal(t, "cd", NewRange(2, 4).Str("abcdef"))
	})

	for _, test := range []struct {
		name     string
		parent   Range
		other    Range
		expected bool
	}{
		{"fully contained range", NewRange(0, 10), NewRange(2, 8), true},
		{"identical ranges", NewRange(5, 15), NewRange(5, 15), true},
		{"other starts before parent", NewRange(5, 15), NewRange(3, 10), false},
		{"other ends after parent", NewRange(5, 15), NewRange(10, 20), false},
	} {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.parent.Contains(test.other))
		})
	}
}

func TestLocationAt(t *testing.T) {
	text := "ab\ncd\n\nef"
	for _, test := range []struct {
		cursor   int
		expected Location
	}{
		{0, Location{Line: 1, Column: 1, Cursor: 0}},
		{2, Location{Line: 1, Column: 3, Cursor: 2}},
		{3, Location{Line: 2, Column: 1, Cursor: 3}},
		{6, Location{Line: 3, Column: 1, Cursor: 6}},
		{8, Location{Line: 4, Column: 2, Cursor: 8}},
		{-4, Location{Line: 1, Column: 1, Cursor: 0}},
		{99, Location{Line: 4, Column: 3, Cursor: 9}},
	} {
		t.Run(test.expected.String(), func(t *testing.T) {
			assert.Equal(t, test.expected, LocationAt(text, test.cursor))
		})
	}
}

func TestTokens(t *testing.T) {
	v := NewValueNodes([]Value{
		NewValueToken("a", NewRange(0, 1)),
		NewValueEmpty(1),
		NewValueNodes([]Value{
			NewValueToken("b", NewRange(1, 2)),
			NewValueNodes(nil, NewRange(2, 2)),
			NewValueToken("c", NewRange(2, 3)),
		}, NewRange(1, 3)),
	}, NewRange(0, 3))

	tokens := Tokens(v)
	require.Len(t, tokens, 3)
	assert.Equal(t, "a", tokens[0].Value)
	assert.Equal(t, "b", tokens[1].Value)
	assert.Equal(t, NewRange(2, 3), tokens[2].Range())

	assert.Equal(t, "abc", v.Text())
	assert.Empty(t, Tokens(NewValueEmpty(0)))
	assert.Equal(t, `<["a" @ 0..1, <> @ 1, <["b" @ 1..2, <[] @ 2>, "c" @ 2..3] @ 1..3>] @ 0..3>`, v.String())
}

func TestPrettyString(t *testing.T) {
	g := NewGrammar("G", NewRule("S", Sequence(
		Literal("a"),
		Optional(Literal("?")),
		ZeroOrMore(CharClass(`[0-9]`)),
	)))
	v, err := Parse(g, "a12")
	require.NoError(t, err)

	assert.Equal(t, `Nodes (0..3)
├── "a" (0..1)
├── Empty (1)
└── Nodes (1..3)
    ├── "1" (1..2)
    └── "2" (2..3)`, v.PrettyString())

	t.Run("Highlight", func(t *testing.T) {
		format := func(input string, token FormatToken) string {
			switch token {
			case FormatToken_Literal:
				return "<" + input + ">"
			case FormatToken_Operator:
				return "[" + input + "]"
			case FormatToken_Range:
				return ""
			}
			return input
		}
		tok := NewValueToken("x\"\n", NewRange(0, 3))
		assert.Equal(t, `<"x\"\n"> `, Highlight(tok, format))
		assert.Equal(t, "[Empty] ", Highlight(NewValueEmpty(0), format))
	})
}
