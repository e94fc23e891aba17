package tinypeg

import (
	"strings"
)

// FormatToken names the pieces of a printed tree so callers can style
// each one differently
type FormatToken int

const (
	FormatToken_None FormatToken = iota
	FormatToken_Range
	FormatToken_Literal
	FormatToken_Operator
)

type FormatFunc func(input string, token FormatToken) string

func plainFormat(input string, _ FormatToken) string { return input }

// Highlight is the same as PrettyString but with each piece of the
// output passed through `format`
func Highlight(v Value, format FormatFunc) string {
	return ppValue(v, format)
}

type treePrinter struct {
	padStr []string
	output *strings.Builder
	format FormatFunc
}

func newTreePrinter(format FormatFunc) *treePrinter {
	return &treePrinter{
		output: &strings.Builder{},
		format: format,
	}
}

func (tp *treePrinter) indent(s string) {
	tp.padStr = append(tp.padStr, s)
}

func (tp *treePrinter) unindent() {
	tp.padStr = tp.padStr[:len(tp.padStr)-1]
}

func (tp *treePrinter) padding() {
	for _, item := range tp.padStr {
		tp.write(item)
	}
}

func (tp *treePrinter) write(s string) {
	tp.output.WriteString(s)
}

func (tp *treePrinter) pwrite(s string) {
	tp.padding()
	tp.write(s)
}

func (tp *treePrinter) writeRange(r Range) {
	tp.write(" ")
	tp.write(tp.format("("+r.String()+")", FormatToken_Range))
}

func ppValue(v Value, format FormatFunc) string {
	tp := newTreePrinter(format)
	tp.visit(v)
	return tp.output.String()
}

func (tp *treePrinter) visit(v Value) {
	switch n := v.(type) {
	case *ValueToken:
		tp.write(tp.format(`"`+escapeToken(n.Value)+`"`, FormatToken_Literal))
		tp.writeRange(n.Range())
	case *ValueEmpty:
		tp.write(tp.format("Empty", FormatToken_Operator))
		tp.writeRange(n.Range())
	case *ValueNodes:
		tp.write(tp.format("Nodes", FormatToken_Operator))
		tp.writeRange(n.Range())
		for i, item := range n.Items {
			tp.write("\n")
			switch {
			case i == len(n.Items)-1:
				tp.pwrite("└── ")
				tp.indent("    ")
			default:
				tp.pwrite("├── ")
				tp.indent("│   ")
			}
			tp.visit(item)
			tp.unindent()
		}
	}
}

var tokenSanitizer = strings.NewReplacer(
	`"`, `\"`,
	`\`, `\\`,
	string('\n'), `\n`,
	string('\r'), `\r`,
	string('\t'), `\t`,
)

func escapeToken(s string) string {
	return tokenSanitizer.Replace(s)
}
