package interp

import (
	"cmp"
	"strings"

	"github.com/clarete/tinypeg/tinycl"
)

func (i *Interpreter) eval(expr tinycl.Expr) (Value, error) {
	switch e := expr.(type) {
	case *tinycl.Number:
		return e.Value, nil
	case *tinycl.String:
		return e.Value, nil
	case *tinycl.Character:
		return string(e.Value), nil
	case *tinycl.Boolean:
		return e.Value, nil

	case *tinycl.Identifier:
		v, ok := i.env.vars[e.Name]
		if !ok {
			return nil, runtimeError(e, "undefined variable: %s", e.Name)
		}
		return v, nil

	case *tinycl.ArrayLiteral:
		items := make([]Value, len(e.Elements))
		for k, elem := range e.Elements {
			v, err := i.eval(elem)
			if err != nil {
				return nil, err
			}
			items[k] = v
		}
		return items, nil

	case *tinycl.ArrayAccess:
		return i.evalIndex(e)

	case *tinycl.FunctionCallExpr:
		return i.call(e, e.Name, e.Args)

	case *tinycl.UnaryOp:
		v, err := i.eval(e.Operand)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case "!":
			return !Truthy(v), nil
		case "-":
			n, ok := v.(int64)
			if !ok {
				return nil, runtimeError(e, "can't negate %s", TypeName(v))
			}
			return -n, nil
		}
		return nil, runtimeError(e, "unknown operator %s", e.Op)

	case *tinycl.BinaryOp:
		return i.evalBinary(e)
	}
	return nil, runtimeError(expr, "unknown expression %s", expr)
}

func (i *Interpreter) evalIndex(e *tinycl.ArrayAccess) (Value, error) {
	container, err := i.eval(e.Array)
	if err != nil {
		return nil, err
	}
	idx, err := i.eval(e.Index)
	if err != nil {
		return nil, err
	}
	n, ok := idx.(int64)
	if !ok {
		return nil, runtimeError(e.Index, "index must be a number, not %s", TypeName(idx))
	}
	switch c := container.(type) {
	case []Value:
		if n < 0 || n >= int64(len(c)) {
			return nil, runtimeError(e, "index %d out of range [0:%d]", n, len(c))
		}
		return c[n], nil
	case string:
		if n < 0 || n >= int64(len(c)) {
			return nil, runtimeError(e, "index %d out of range [0:%d]", n, len(c))
		}
		return c[n : n+1], nil
	}
	return nil, runtimeError(e.Array, "can't index %s", TypeName(container))
}

func (i *Interpreter) evalBinary(e *tinycl.BinaryOp) (Value, error) {
	left, err := i.eval(e.Left)
	if err != nil {
		return nil, err
	}

	// both logical operators short circuit
	switch e.Op {
	case "&&":
		if !Truthy(left) {
			return false, nil
		}
		right, err := i.eval(e.Right)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	case "||":
		if Truthy(left) {
			return true, nil
		}
		right, err := i.eval(e.Right)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	}

	right, err := i.eval(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	case "+":
		return add(e, left, right)
	case "<", ">", "<=", ">=":
		return compare(e, left, right)
	case "-", "*", "/", "%":
		return arith(e, left, right)
	}
	return nil, runtimeError(e, "unknown operator %s", e.Op)
}

// add sums numbers, concatenates arrays, and concatenates the text of
// both sides when either one is a string
func add(e *tinycl.BinaryOp, left, right Value) (Value, error) {
	switch l := left.(type) {
	case int64:
		if r, ok := right.(int64); ok {
			return l + r, nil
		}
	case []Value:
		if r, ok := right.([]Value); ok {
			out := make([]Value, 0, len(l)+len(r))
			return append(append(out, l...), r...), nil
		}
	}
	_, ls := left.(string)
	_, rs := right.(string)
	if ls || rs {
		var b strings.Builder
		b.WriteString(Format(left))
		b.WriteString(Format(right))
		return b.String(), nil
	}
	return nil, mismatch(e, left, right)
}

func arith(e *tinycl.BinaryOp, left, right Value) (Value, error) {
	l, lok := left.(int64)
	r, rok := right.(int64)
	if !lok || !rok {
		return nil, mismatch(e, left, right)
	}
	switch e.Op {
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, runtimeError(e, "division by zero")
		}
		return l / r, nil
	default:
		if r == 0 {
			return nil, runtimeError(e, "division by zero")
		}
		return l % r, nil
	}
}

func compare(e *tinycl.BinaryOp, left, right Value) (Value, error) {
	var c int
	switch l := left.(type) {
	case int64:
		r, ok := right.(int64)
		if !ok {
			return nil, mismatch(e, left, right)
		}
		c = cmp.Compare(l, r)
	case string:
		r, ok := right.(string)
		if !ok {
			return nil, mismatch(e, left, right)
		}
		c = cmp.Compare(l, r)
	default:
		return nil, mismatch(e, left, right)
	}
	switch e.Op {
	case "<":
		return c < 0, nil
	case ">":
		return c > 0, nil
	case "<=":
		return c <= 0, nil
	default:
		return c >= 0, nil
	}
}

func mismatch(e *tinycl.BinaryOp, left, right Value) error {
	return runtimeError(e, "invalid operation: %s %s %s", TypeName(left), e.Op, TypeName(right))
}
