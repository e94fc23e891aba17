package pegfile

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"github.com/clarete/tinypeg"
)

// GenGoOptions controls the names used in the generated source
type GenGoOptions struct {
	// PackageName is the name of the go package in the output
	PackageName string

	// FuncName is the name of the function that returns the grammar
	FuncName string
}

type goCodeEmitter struct {
	output      *strings.Builder
	indentLevel int
}

func newGoCodeEmitter(opts GenGoOptions) *goCodeEmitter {
	var output strings.Builder
	fmt.Fprintf(&output, `// Code generated by tinycl gen. DO NOT EDIT.

package %s

import "github.com/clarete/tinypeg"
`, opts.PackageName)
	return &goCodeEmitter{output: &output}
}

func (g *goCodeEmitter) visitGrammar(grammar *tinypeg.Grammar, funcName string) {
	g.write("\n")
	fmt.Fprintf(g.output, "// %s returns the %s grammar\n", funcName, grammar.Name)
	fmt.Fprintf(g.output, "func %s() *tinypeg.Grammar {\n", funcName)
	g.indent()
	g.writei("return tinypeg.NewGrammar(")
	g.write(strconv.Quote(grammar.Name))
	g.write(",\n")
	g.indent()
	for _, rule := range grammar.Rules() {
		g.writei("tinypeg.NewRule(")
		g.write(strconv.Quote(rule.Name))
		g.write(", ")
		g.visit(rule.Body)
		g.write("),\n")
	}
	g.unindent()
	g.writei(")\n")
	g.unindent()
	g.write("}\n")
}

func (g *goCodeEmitter) visit(expr tinypeg.Expression) {
	switch e := expr.(type) {
	case *tinypeg.LiteralExpr:
		fmt.Fprintf(g.output, "tinypeg.Literal(%s)", strconv.Quote(e.Value))
	case *tinypeg.CharClassExpr:
		fmt.Fprintf(g.output, "tinypeg.CharClass(%s)", quotePattern(e.Pattern))
	case *tinypeg.ReferenceExpr:
		fmt.Fprintf(g.output, "tinypeg.Reference(%s)", strconv.Quote(e.Name))
	case *tinypeg.SequenceExpr:
		g.visitList("tinypeg.Sequence", e.Items)
	case *tinypeg.ChoiceExpr:
		g.visitList("tinypeg.Choice", e.Items)
	case *tinypeg.ZeroOrMoreExpr:
		g.visitUnary("tinypeg.ZeroOrMore", e.Expr)
	case *tinypeg.OneOrMoreExpr:
		g.visitUnary("tinypeg.OneOrMore", e.Expr)
	case *tinypeg.OptionalExpr:
		g.visitUnary("tinypeg.Optional", e.Expr)
	case *tinypeg.AndExpr:
		g.visitUnary("tinypeg.AndPredicate", e.Expr)
	case *tinypeg.NotExpr:
		g.visitUnary("tinypeg.NotPredicate", e.Expr)
	}
}

func (g *goCodeEmitter) visitUnary(fn string, expr tinypeg.Expression) {
	g.write(fn)
	g.write("(")
	g.visit(expr)
	g.write(")")
}

func (g *goCodeEmitter) visitList(fn string, items []tinypeg.Expression) {
	g.write(fn)
	g.write("(\n")
	g.indent()
	for _, item := range items {
		g.writei("")
		g.visit(item)
		g.write(",\n")
	}
	g.unindent()
	g.writei(")")
}

// quotePattern prefers raw strings since patterns are full of
// backslashes
func quotePattern(pattern string) string {
	if strings.ContainsAny(pattern, "`\n") {
		return strconv.Quote(pattern)
	}
	return "`" + pattern + "`"
}

// Utilities to write data into the output buffer

func (g *goCodeEmitter) writei(s string) {
	g.writeIndent()
	g.write(s)
}

func (g *goCodeEmitter) write(s string) {
	g.output.WriteString(s)
}

func (g *goCodeEmitter) writeIndent() {
	for i := 0; i < g.indentLevel; i++ {
		g.output.WriteString("	")
	}
}

// Indentation related utilities

func (g *goCodeEmitter) indent() {
	g.indentLevel++
}

func (g *goCodeEmitter) unindent() {
	g.indentLevel--
}

func (g *goCodeEmitter) String() string {
	return g.output.String()
}

// GenGo returns the go source of a function that builds `grammar`
// with the tinypeg constructors
func GenGo(grammar *tinypeg.Grammar, opts GenGoOptions) (string, error) {
	if opts.PackageName == "" {
		opts.PackageName = "grammar"
	}
	if opts.FuncName == "" {
		opts.FuncName = "Grammar"
	}
	g := newGoCodeEmitter(opts)
	g.visitGrammar(grammar, opts.FuncName)
	src, err := format.Source([]byte(g.String()))
	if err != nil {
		return "", fmt.Errorf("can't format generated code: %w", err)
	}
	return string(src), nil
}
