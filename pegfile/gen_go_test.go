package pegfile

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarete/tinypeg"
)

func TestGenGo(t *testing.T) {
	g, err := Load("calc", "Number <- [0-9]+\nSum <- Number ('+' Number)*\n")
	require.NoError(t, err)

	t.Run("Default names", func(t *testing.T) {
		src, err := GenGo(g, GenGoOptions{})
		require.NoError(t, err)

		assert.Contains(t, src, "// Code generated by tinycl gen. DO NOT EDIT.")
		assert.Contains(t, src, "package grammar\n")
		assert.Contains(t, src, "// Grammar returns the calc grammar\nfunc Grammar() *tinypeg.Grammar {\n")
		assert.Contains(t, src, "\treturn tinypeg.NewGrammar(\"calc\",\n")
		assert.Contains(t, src, "\t\ttinypeg.NewRule(\"Number\", tinypeg.CharClass(`[0-9]+`)),\n")
		assert.Contains(t, src, `		tinypeg.NewRule("Sum", tinypeg.Sequence(
			tinypeg.Reference("Number"),
			tinypeg.ZeroOrMore(tinypeg.Sequence(
				tinypeg.Literal("+"),
				tinypeg.Reference("Number"),
			)),
		)),
`)

		_, err = parser.ParseFile(token.NewFileSet(), "calc.go", src, 0)
		assert.NoError(t, err)
	})

	t.Run("Custom names", func(t *testing.T) {
		src, err := GenGo(g, GenGoOptions{PackageName: "calc", FuncName: "Calc"})
		require.NoError(t, err)
		assert.Contains(t, src, "package calc\n")
		assert.Contains(t, src, "func Calc() *tinypeg.Grammar {")
	})

	t.Run("Every expression", func(t *testing.T) {
		g := tinypeg.NewGrammar("all",
			tinypeg.NewRule("S", tinypeg.Choice(
				tinypeg.OneOrMore(tinypeg.Literal("a\"b")),
				tinypeg.Optional(tinypeg.AndPredicate(tinypeg.Reference("S"))),
				tinypeg.NotPredicate(tinypeg.CharClass("`")),
			)),
		)
		src, err := GenGo(g, GenGoOptions{})
		require.NoError(t, err)
		assert.Contains(t, src, `tinypeg.OneOrMore(tinypeg.Literal("a\"b")),`)
		assert.Contains(t, src, `tinypeg.Optional(tinypeg.AndPredicate(tinypeg.Reference("S"))),`)
		assert.Contains(t, src, "tinypeg.NotPredicate(tinypeg.CharClass(\"`\")),")

		_, err = parser.ParseFile(token.NewFileSet(), "all.go", src, 0)
		assert.NoError(t, err)
	})
}
