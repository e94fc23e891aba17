// Package interp runs TinyCL programs by walking their syntax tree.
//
// Variables live in a single environment.  Calling a function saves
// it, binds the parameters on top of a copy and puts the saved one
// back when the call returns, so functions see the variables of their
// caller but can't change them.
package interp

import (
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/pkg/errors"

	peg "github.com/clarete/tinypeg"
	"github.com/clarete/tinypeg/tinycl"
)

// DefaultMaxDepth is how many nested calls are allowed unless
// WithMaxDepth says otherwise
const DefaultMaxDepth = 512

// RuntimeError is returned when a program fails while running
type RuntimeError struct {
	// Range is where the failing node is in the source text
	Range peg.Range

	// Function is the innermost function running when it failed
	Function string

	Message string
}

func (e *RuntimeError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("in %s: %s", e.Function, e.Message)
	}
	return e.Message
}

func runtimeError(n tinycl.Node, format string, args ...any) error {
	return errors.WithStack(&RuntimeError{Range: n.Range(), Message: fmt.Sprintf(format, args...)})
}

type env struct {
	vars   map[string]Value
	consts map[string]bool
}

func (e env) clone() env {
	return env{vars: maps.Clone(e.vars), consts: maps.Clone(e.consts)}
}

// Interpreter holds the state of a running program.  Declarations
// stay around between calls to Run, which is what the REPL relies on.
type Interpreter struct {
	out      io.Writer
	logger   *slog.Logger
	maxDepth int
	depth    int
	env      env
	funcs    map[string]*tinycl.FunctionDecl
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithLogger sets the logger that receives debug traces of calls
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// WithMaxDepth limits how deep calls can nest
func WithMaxDepth(depth int) Option {
	return func(i *Interpreter) { i.maxDepth = depth }
}

// New returns an interpreter that writes the output of `print` to
// `out`
func New(out io.Writer, opts ...Option) *Interpreter {
	i := &Interpreter{
		out:      out,
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
		env:      env{vars: map[string]Value{}, consts: map[string]bool{}},
		funcs:    map[string]*tinycl.FunctionDecl{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Lookup returns the current value of the variable `name`
func (i *Interpreter) Lookup(name string) (Value, bool) {
	v, ok := i.env.vars[name]
	return v, ok
}

// Run executes the statements of `program` in order
func (i *Interpreter) Run(program *tinycl.Program) error {
	for _, stmt := range program.Statements {
		ret, err := i.exec(stmt)
		if err != nil {
			return err
		}
		if ret != nil {
			return runtimeError(stmt, "return outside of a function")
		}
	}
	return nil
}

// Eval evaluates a single expression against the current environment
func (i *Interpreter) Eval(expr tinycl.Expr) (Value, error) {
	return i.eval(expr)
}

// returned carries the value of a `return` up to the call it leaves
type returned struct{ value Value }

func (i *Interpreter) exec(stmt tinycl.Stmt) (*returned, error) {
	switch s := stmt.(type) {
	case *tinycl.Comment:
		return nil, nil

	case *tinycl.VariableDecl:
		return nil, i.declare(s, s.Name, s.Value, false)

	case *tinycl.ConstantDecl:
		return nil, i.declare(s, s.Name, s.Value, true)

	case *tinycl.Assignment:
		if i.env.consts[s.Name] {
			return nil, runtimeError(s, "can't assign to constant %s", s.Name)
		}
		v, err := i.eval(s.Value)
		if err != nil {
			return nil, err
		}
		i.env.vars[s.Name] = v
		return nil, nil

	case *tinycl.If:
		cond, err := i.eval(s.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return i.execBlock(s.Then)
		}
		if s.Else != nil {
			return i.execBlock(s.Else)
		}
		return nil, nil

	case *tinycl.While:
		for {
			cond, err := i.eval(s.Cond)
			if err != nil {
				return nil, err
			}
			if !Truthy(cond) {
				return nil, nil
			}
			if ret, err := i.execBlock(s.Body); err != nil || ret != nil {
				return ret, err
			}
		}

	case *tinycl.Print:
		v, err := i.eval(s.Value)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Fprintln(i.out, Format(v)); err != nil {
			return nil, errors.Wrap(err, "can't write output")
		}
		return nil, nil

	case *tinycl.Return:
		if s.Value == nil {
			return &returned{}, nil
		}
		v, err := i.eval(s.Value)
		if err != nil {
			return nil, err
		}
		return &returned{value: v}, nil

	case *tinycl.Block:
		return i.execBlock(s)

	case *tinycl.FunctionDecl:
		i.funcs[s.Name] = s
		return nil, nil

	case *tinycl.FunctionCallStmt:
		_, err := i.call(s, s.Name, s.Args)
		return nil, err
	}
	return nil, runtimeError(stmt, "unknown statement %s", stmt)
}

func (i *Interpreter) execBlock(block *tinycl.Block) (*returned, error) {
	for _, stmt := range block.Statements {
		if ret, err := i.exec(stmt); err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (i *Interpreter) declare(n tinycl.Node, name string, expr tinycl.Expr, constant bool) error {
	if i.env.consts[name] {
		return runtimeError(n, "can't redeclare constant %s", name)
	}
	v, err := i.eval(expr)
	if err != nil {
		return err
	}
	i.env.vars[name] = v
	if constant {
		i.env.consts[name] = true
	}
	return nil
}

func (i *Interpreter) call(n tinycl.Node, name string, args []tinycl.Expr) (Value, error) {
	fn, ok := i.funcs[name]
	if !ok {
		return nil, runtimeError(n, "undefined function: %s", name)
	}
	if len(args) != len(fn.Params) {
		return nil, runtimeError(n, "%s takes %d arguments, %d given", name, len(fn.Params), len(args))
	}
	if i.depth >= i.maxDepth {
		return nil, runtimeError(n, "too many nested calls calling %s", name)
	}

	values := make([]Value, len(args))
	for k, arg := range args {
		v, err := i.eval(arg)
		if err != nil {
			return nil, err
		}
		values[k] = v
	}

	saved := i.env
	i.env = saved.clone()
	for k, param := range fn.Params {
		i.env.vars[param] = values[k]
		delete(i.env.consts, param)
	}
	i.depth++
	i.logger.Debug("call", "function", name, "depth", i.depth)

	ret, err := i.execBlock(fn.Body)

	i.depth--
	i.env = saved

	if err != nil {
		var rerr *RuntimeError
		if errors.As(err, &rerr) && rerr.Function == "" {
			rerr.Function = name
		}
		return nil, err
	}
	if ret == nil {
		return nil, nil
	}
	return ret.value, nil
}
