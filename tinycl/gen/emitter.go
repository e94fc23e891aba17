package gen

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/clarete/tinypeg/tinycl"
)

// codeEmitter is the output buffer shared by the targets.  The first
// error is kept and everything written after it is thrown away with
// the buffer.
type codeEmitter struct {
	target      string
	output      *strings.Builder
	indentLevel int
	indentText  string
	err         error
}

func newCodeEmitter(target, indentText string) *codeEmitter {
	return &codeEmitter{target: target, output: &strings.Builder{}, indentText: indentText}
}

func (g *codeEmitter) fail(n tinycl.Node, format string, args ...any) {
	if g.err != nil {
		return
	}
	g.err = errors.WithStack(&Error{
		Target:  g.target,
		Range:   n.Range(),
		Message: fmt.Sprintf(format, args...),
	})
}

// Utilities to write data into the output buffer

func (g *codeEmitter) line(format string, args ...any) {
	g.writeIndent()
	fmt.Fprintf(g.output, format, args...)
	g.write("\n")
}

func (g *codeEmitter) writei(s string) {
	g.writeIndent()
	g.write(s)
}

func (g *codeEmitter) write(s string) {
	g.output.WriteString(s)
}

func (g *codeEmitter) writeIndent() {
	for i := 0; i < g.indentLevel; i++ {
		g.output.WriteString(g.indentText)
	}
}

// Indentation related utilities

func (g *codeEmitter) indent() {
	g.indentLevel++
}

func (g *codeEmitter) unindent() {
	g.indentLevel--
}

func (g *codeEmitter) String() string {
	return g.output.String()
}

// elseIf returns the If of an `else if` chain, which the parser keeps
// as an else block holding a single If
func elseIf(b *tinycl.Block) (*tinycl.If, bool) {
	if b == nil || len(b.Statements) != 1 {
		return nil, false
	}
	stmt, ok := b.Statements[0].(*tinycl.If)
	return stmt, ok
}

func commentText(c *tinycl.Comment) string {
	return strings.TrimSpace(strings.TrimPrefix(c.Text, "#"))
}
