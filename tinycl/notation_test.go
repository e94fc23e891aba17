package tinycl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	peg "github.com/clarete/tinypeg"
	"github.com/clarete/tinypeg/pegfile"
)

func TestNotationDescribesTheSameGrammar(t *testing.T) {
	loaded, err := pegfile.Load("TinyCL", Notation())
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())

	builtin := Grammar().Rules()
	require.Len(t, loaded.Rules(), len(builtin))
	for _, rule := range builtin {
		t.Run(rule.Name, func(t *testing.T) {
			other, ok := loaded.Rule(rule.Name)
			require.True(t, ok)
			assert.Equal(t, rule.String(), other.String())
		})
	}
}

func TestNotationParsesPrograms(t *testing.T) {
	loaded, err := pegfile.Load("TinyCL", Notation())
	require.NoError(t, err)

	m, err := peg.MatcherFromGrammar(loaded, peg.NewConfig())
	require.NoError(t, err)

	src := "var i = 0; while (i < 10) { i = i + 2 * 3 - 1; } print(i);"
	value, _, err := m.Match(src)
	require.NoError(t, err)
	fromNotation, err := Build("Program", value)
	require.NoError(t, err)

	fromBuiltin, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, fromBuiltin.String(), fromNotation.String())
}
