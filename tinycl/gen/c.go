package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clarete/tinypeg/tinycl"
)

const cRuntime = `#include <stdio.h>
#include <stdlib.h>

static long long tcl_div(long long a, long long b) {
    if (b == 0) {
        fprintf(stderr, "division by zero\n");
        exit(1);
    }
    return a / b;
}

static long long tcl_mod(long long a, long long b) {
    if (b == 0) {
        fprintf(stderr, "division by zero\n");
        exit(1);
    }
    return a % b;
}
`

// cReserved are the names a TinyCL variable can't keep in C
var cReserved = func() map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(`auto break case char const continue default do
		double else enum extern float for goto if inline int long register restrict
		return short signed sizeof static struct switch typedef union unsigned void
		volatile while main printf fprintf exit stderr`) {
		words[w] = true
	}
	return words
}()

type cEmitter struct {
	*codeEmitter

	// arity of every function, all of them declared at the top
	// level
	arity map[string]int

	// scope is the set of variables visible in the function being
	// written
	scope map[string]bool
	inFn  bool
}

func genC(program *tinycl.Program) (string, error) {
	g := &cEmitter{codeEmitter: newCodeEmitter("c", "    "), arity: map[string]int{}}
	g.visitProgram(program)
	if g.err != nil {
		return "", g.err
	}
	return g.String(), nil
}

func (g *cEmitter) visitProgram(program *tinycl.Program) {
	var (
		funcs []*tinycl.FunctionDecl
		main  []tinycl.Stmt
	)
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*tinycl.FunctionDecl); ok {
			if _, dup := g.arity[fn.Name]; dup {
				g.fail(fn, "function %s declared more than once", fn.Name)
			}
			g.arity[fn.Name] = len(fn.Params)
			funcs = append(funcs, fn)
			continue
		}
		main = append(main, stmt)
	}

	g.write("// " + header + "\n\n")
	g.write(cRuntime)
	if len(funcs) > 0 {
		g.write("\n")
		for _, fn := range funcs {
			g.write(g.signature(fn) + ";\n")
		}
	}
	for _, fn := range funcs {
		g.write("\n")
		g.visitFunction(fn)
	}

	g.write("\nint main(void) {\n")
	g.indent()
	g.declare(nil, main)
	for _, stmt := range main {
		g.visitStmt(stmt)
	}
	g.line("return 0;")
	g.unindent()
	g.write("}\n")
}

func (g *cEmitter) signature(fn *tinycl.FunctionDecl) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = "long long " + cName(p)
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	return fmt.Sprintf("long long tcl_%s(%s)", fn.Name, strings.Join(params, ", "))
}

func (g *cEmitter) visitFunction(fn *tinycl.FunctionDecl) {
	g.write(g.signature(fn) + " {\n")
	g.indent()
	g.inFn = true
	g.declare(fn.Params, fn.Body.Statements)
	for _, stmt := range fn.Body.Statements {
		g.visitStmt(stmt)
	}
	g.line("return 0;")
	g.inFn = false
	g.unindent()
	g.write("}\n")
}

// declare opens the scope of a function.  TinyCL blocks don't open
// scopes of their own, so every variable the body writes to is
// declared up front.
func (g *cEmitter) declare(params []string, body []tinycl.Stmt) {
	g.scope = map[string]bool{}
	for _, p := range params {
		g.scope[p] = true
	}
	var names []string
	collectNames(body, func(name string) {
		if !g.scope[name] {
			g.scope[name] = true
			names = append(names, cName(name))
		}
	})
	if len(names) > 0 {
		g.line("long long %s;", strings.Join(names, " = 0, ")+" = 0")
	}
}

func collectNames(stmts []tinycl.Stmt, fn func(string)) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *tinycl.VariableDecl:
			fn(s.Name)
		case *tinycl.ConstantDecl:
			fn(s.Name)
		case *tinycl.Assignment:
			fn(s.Name)
		case *tinycl.If:
			collectNames(s.Then.Statements, fn)
			if s.Else != nil {
				collectNames(s.Else.Statements, fn)
			}
		case *tinycl.While:
			collectNames(s.Body.Statements, fn)
		case *tinycl.Block:
			collectNames(s.Statements, fn)
		}
	}
}

func (g *cEmitter) visitStmt(stmt tinycl.Stmt) {
	switch s := stmt.(type) {
	case *tinycl.Comment:
		g.line("%s", strings.TrimSpace("// "+commentText(s)))
	case *tinycl.VariableDecl:
		g.line("%s = %s;", cName(s.Name), g.visitExpr(s.Value))
	case *tinycl.ConstantDecl:
		g.line("%s = %s;", cName(s.Name), g.visitExpr(s.Value))
	case *tinycl.Assignment:
		g.line("%s = %s;", cName(s.Name), g.visitExpr(s.Value))
	case *tinycl.If:
		g.writei("")
		g.visitIf(s)
		g.write("\n")
	case *tinycl.While:
		g.line("while (%s) {", g.visitExpr(s.Cond))
		g.visitBody(s.Body)
		g.line("}")
	case *tinycl.Print:
		g.visitPrint(s)
	case *tinycl.Return:
		if !g.inFn {
			g.fail(s, "return outside of a function")
			return
		}
		if s.Value == nil {
			g.line("return 0;")
			return
		}
		g.line("return %s;", g.visitExpr(s.Value))
	case *tinycl.Block:
		g.line("{")
		g.visitBody(s)
		g.line("}")
	case *tinycl.FunctionDecl:
		g.fail(s, "functions can only be declared at the top level")
	case *tinycl.FunctionCallStmt:
		g.line("%s;", g.call(s, s.Name, s.Args))
	default:
		g.fail(stmt, "unknown statement %s", stmt)
	}
}

// visitIf writes an if statement without the indentation of its first
// line, so `else if` chains stay on the same line as the brace
func (g *cEmitter) visitIf(s *tinycl.If) {
	g.write(fmt.Sprintf("if (%s) {\n", g.visitExpr(s.Cond)))
	g.visitBody(s.Then)
	g.writei("}")
	if next, ok := elseIf(s.Else); ok {
		g.write(" else ")
		g.visitIf(next)
		return
	}
	if s.Else != nil {
		g.write(" else {\n")
		g.visitBody(s.Else)
		g.writei("}")
	}
}

func (g *cEmitter) visitBody(b *tinycl.Block) {
	g.indent()
	for _, stmt := range b.Statements {
		g.visitStmt(stmt)
	}
	g.unindent()
}

// visitPrint picks the format from what the expression is known to
// produce.  Text can only be printed as a literal.
func (g *cEmitter) visitPrint(s *tinycl.Print) {
	switch v := s.Value.(type) {
	case *tinycl.String:
		g.line(`printf("%%s\n", %s);`, cQuote(v.Value))
		return
	case *tinycl.Character:
		g.line(`printf("%%s\n", %s);`, cQuote(string(v.Value)))
		return
	}
	expr := g.visitExpr(s.Value)
	if isBoolean(s.Value) {
		g.line(`printf("%%s\n", %s ? "true" : "false");`, expr)
		return
	}
	g.line(`printf("%%lld\n", %s);`, expr)
}

func isBoolean(expr tinycl.Expr) bool {
	switch e := expr.(type) {
	case *tinycl.Boolean:
		return true
	case *tinycl.UnaryOp:
		return e.Op == "!"
	case *tinycl.BinaryOp:
		switch e.Op {
		case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
			return true
		}
	}
	return false
}

func (g *cEmitter) call(n tinycl.Node, name string, args []tinycl.Expr) string {
	want, ok := g.arity[name]
	if !ok {
		g.fail(n, "undefined function: %s", name)
		return ""
	}
	if want != len(args) {
		g.fail(n, "%s takes %d arguments, %d given", name, want, len(args))
		return ""
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = g.visitExpr(arg)
	}
	return "tcl_" + name + "(" + strings.Join(parts, ", ") + ")"
}

func (g *cEmitter) visitExpr(expr tinycl.Expr) string {
	switch e := expr.(type) {
	case *tinycl.Number:
		return strconv.FormatInt(e.Value, 10) + "LL"
	case *tinycl.Boolean:
		if e.Value {
			return "1"
		}
		return "0"
	case *tinycl.Identifier:
		if !g.scope[e.Name] {
			g.fail(e, "undefined variable: %s", e.Name)
			return ""
		}
		return cName(e.Name)
	case *tinycl.FunctionCallExpr:
		return g.call(e, e.Name, e.Args)
	case *tinycl.UnaryOp:
		switch e.Op {
		case "!", "-":
			return "(" + e.Op + g.visitExpr(e.Operand) + ")"
		}
	case *tinycl.BinaryOp:
		l, r := g.visitExpr(e.Left), g.visitExpr(e.Right)
		switch e.Op {
		case "/":
			return fmt.Sprintf("tcl_div(%s, %s)", l, r)
		case "%":
			return fmt.Sprintf("tcl_mod(%s, %s)", l, r)
		case "+", "-", "*", "==", "!=", "<", ">", "<=", ">=", "&&", "||":
			return fmt.Sprintf("(%s %s %s)", l, e.Op, r)
		}
	case *tinycl.String, *tinycl.Character:
		g.fail(expr, "text can only be printed as a literal")
		return ""
	case *tinycl.ArrayLiteral, *tinycl.ArrayAccess:
		g.fail(expr, "arrays aren't supported")
		return ""
	}
	g.fail(expr, "unknown expression %s", expr)
	return ""
}

func cName(name string) string {
	if cReserved[name] || strings.HasPrefix(name, "tcl_") {
		return name + "_"
	}
	return name
}

// cQuote writes `s` as a C string literal.  Bytes outside printable
// ASCII become octal escapes, which unlike `\x` stop after three
// digits.
func cQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
