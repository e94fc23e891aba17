package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clarete/tinypeg/tinycl"
)

// pythonRuntime holds the helpers the generated code calls where
// python and TinyCL disagree: formatting, truthiness, equality,
// string concatenation, integer division and indexing.
const pythonRuntime = `import json
import sys

_funcs = {}


def _fmt(v):
    if v is None:
        return "nil"
    if isinstance(v, bool):
        return "true" if v else "false"
    if isinstance(v, list):
        items = (json.dumps(x, ensure_ascii=False) if isinstance(x, str) else _fmt(x) for x in v)
        return "[" + ", ".join(items) + "]"
    return str(v)


def _truthy(v):
    if isinstance(v, (bool, int, str, list)):
        return bool(v)
    return False


def _eq(a, b):
    if isinstance(a, list):
        return isinstance(b, list) and len(a) == len(b) and all(_eq(x, y) for x, y in zip(a, b))
    return type(a) is type(b) and a == b


def _add(a, b):
    if isinstance(a, str) or isinstance(b, str):
        return _fmt(a) + _fmt(b)
    return a + b


def _div(a, b):
    if b == 0:
        raise ZeroDivisionError("division by zero")
    q = abs(a) // abs(b)
    return q if (a < 0) == (b < 0) else -q


def _mod(a, b):
    return a - b * _div(a, b)


def _index(c, i):
    if not 0 <= i < len(c):
        raise IndexError("index %d out of range [0:%d]" % (i, len(c)))
    return c[i]


def _bind(name, env, params, args):
    if len(args) != len(params):
        raise TypeError("%s takes %d arguments, %d given" % (name, len(params), len(args)))
    env = dict(env)
    env.update(zip(params, args))
    return env


def _call(name, env, *args):
    if name not in _funcs:
        raise NameError("undefined function: " + name)
    return _funcs[name](env, *args)
`

type pythonEmitter struct {
	*codeEmitter

	// functions is how many function declarations enclose the
	// statement being written
	functions int
}

func genPython(program *tinycl.Program) (string, error) {
	g := &pythonEmitter{codeEmitter: newCodeEmitter("python", "    ")}
	g.visitProgram(program)
	if g.err != nil {
		return "", g.err
	}
	return g.String(), nil
}

func (g *pythonEmitter) visitProgram(program *tinycl.Program) {
	g.write("#!/usr/bin/env python3\n")
	g.write("# " + header + "\n\n")
	g.write(pythonRuntime)
	g.write("\n\ndef main():\n")
	g.indent()
	g.line("_vars = {}")
	for _, stmt := range program.Statements {
		g.visitStmt(stmt)
	}
	g.line("return 0")
	g.unindent()
	g.write("\n\nif __name__ == \"__main__\":\n")
	g.indent()
	g.line("sys.exit(main())")
	g.unindent()
}

func (g *pythonEmitter) visitStmt(stmt tinycl.Stmt) {
	switch s := stmt.(type) {
	case *tinycl.Comment:
		g.line("%s", strings.TrimSpace("# "+commentText(s)))
	case *tinycl.VariableDecl:
		g.assign(s.Name, s.Value)
	case *tinycl.ConstantDecl:
		g.assign(s.Name, s.Value)
	case *tinycl.Assignment:
		g.assign(s.Name, s.Value)
	case *tinycl.If:
		g.visitIf(s, "if")
	case *tinycl.While:
		g.line("while _truthy(%s):", g.visitExpr(s.Cond))
		g.visitBody(s.Body)
	case *tinycl.Print:
		g.line("print(_fmt(%s))", g.visitExpr(s.Value))
	case *tinycl.Return:
		if g.functions == 0 {
			g.fail(s, "return outside of a function")
			return
		}
		if s.Value == nil {
			g.line("return None")
			return
		}
		g.line("return %s", g.visitExpr(s.Value))
	case *tinycl.Block:
		// blocks don't open a scope
		for _, inner := range s.Statements {
			g.visitStmt(inner)
		}
	case *tinycl.FunctionDecl:
		g.visitFunction(s)
	case *tinycl.FunctionCallStmt:
		g.line("%s", g.call(s.Name, s.Args))
	default:
		g.fail(stmt, "unknown statement %s", stmt)
	}
}

func (g *pythonEmitter) assign(name string, value tinycl.Expr) {
	g.line("_vars[%s] = %s", strconv.Quote(name), g.visitExpr(value))
}

func (g *pythonEmitter) visitIf(s *tinycl.If, keyword string) {
	g.line("%s _truthy(%s):", keyword, g.visitExpr(s.Cond))
	g.visitBody(s.Then)
	if next, ok := elseIf(s.Else); ok {
		g.visitIf(next, "elif")
		return
	}
	if s.Else != nil {
		g.line("else:")
		g.visitBody(s.Else)
	}
}

// visitBody writes an indented block, which python doesn't allow to
// be empty
func (g *pythonEmitter) visitBody(b *tinycl.Block) {
	g.indent()
	defer g.unindent()
	for _, stmt := range b.Statements {
		g.visitStmt(stmt)
	}
	if !hasCode(b.Statements) {
		g.line("pass")
	}
}

func hasCode(stmts []tinycl.Stmt) bool {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *tinycl.Comment:
		case *tinycl.Block:
			if hasCode(s.Statements) {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// visitFunction declares the function where the statement is, so it
// only becomes callable once the declaration runs.  Every call gets a
// copy of the variables of its caller.
func (g *pythonEmitter) visitFunction(s *tinycl.FunctionDecl) {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = strconv.Quote(p)
	}
	fn := "_fn_" + s.Name
	g.line("def %s(_vars, *args):", fn)
	g.indent()
	g.line("_vars = _bind(%s, _vars, [%s], args)", strconv.Quote(s.Name), strings.Join(params, ", "))
	g.functions++
	for _, stmt := range s.Body.Statements {
		g.visitStmt(stmt)
	}
	g.functions--
	g.unindent()
	g.line("_funcs[%s] = %s", strconv.Quote(s.Name), fn)
}

func (g *pythonEmitter) call(name string, args []tinycl.Expr) string {
	parts := []string{strconv.Quote(name), "_vars"}
	for _, arg := range args {
		parts = append(parts, g.visitExpr(arg))
	}
	return "_call(" + strings.Join(parts, ", ") + ")"
}

func (g *pythonEmitter) visitExpr(expr tinycl.Expr) string {
	switch e := expr.(type) {
	case *tinycl.Number:
		return strconv.FormatInt(e.Value, 10)
	case *tinycl.String:
		return strconv.Quote(e.Value)
	case *tinycl.Character:
		return strconv.Quote(string(e.Value))
	case *tinycl.Boolean:
		if e.Value {
			return "True"
		}
		return "False"
	case *tinycl.Identifier:
		return "_vars[" + strconv.Quote(e.Name) + "]"
	case *tinycl.ArrayLiteral:
		items := make([]string, len(e.Elements))
		for i, elem := range e.Elements {
			items[i] = g.visitExpr(elem)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *tinycl.ArrayAccess:
		return fmt.Sprintf("_index(%s, %s)", g.visitExpr(e.Array), g.visitExpr(e.Index))
	case *tinycl.FunctionCallExpr:
		return g.call(e.Name, e.Args)
	case *tinycl.UnaryOp:
		operand := g.visitExpr(e.Operand)
		switch e.Op {
		case "!":
			return "(not _truthy(" + operand + "))"
		case "-":
			return "(-" + operand + ")"
		}
	case *tinycl.BinaryOp:
		return g.visitBinary(e)
	}
	g.fail(expr, "unknown expression %s", expr)
	return ""
}

func (g *pythonEmitter) visitBinary(e *tinycl.BinaryOp) string {
	l, r := g.visitExpr(e.Left), g.visitExpr(e.Right)
	switch e.Op {
	case "&&":
		return fmt.Sprintf("(_truthy(%s) and _truthy(%s))", l, r)
	case "||":
		return fmt.Sprintf("(_truthy(%s) or _truthy(%s))", l, r)
	case "==":
		return fmt.Sprintf("_eq(%s, %s)", l, r)
	case "!=":
		return fmt.Sprintf("(not _eq(%s, %s))", l, r)
	case "+":
		return fmt.Sprintf("_add(%s, %s)", l, r)
	case "/":
		return fmt.Sprintf("_div(%s, %s)", l, r)
	case "%":
		return fmt.Sprintf("_mod(%s, %s)", l, r)
	case "-", "*", "<", ">", "<=", ">=":
		return fmt.Sprintf("(%s %s %s)", l, e.Op, r)
	}
	g.fail(e, "unknown operator %s", e.Op)
	return ""
}
