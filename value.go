package tinypeg

import (
	"fmt"
	"strings"
)

// Value is the untyped output of the matcher.  Its shape mirrors the
// shape of the grammar that produced it: terminals produce tokens,
// sequences and repetitions produce nodes, predicates and missing
// optionals produce empty values, and choices or references just
// hand over the value of whatever they matched.
type Value interface {
	// Range returns the byte offsets in which the value was found
	// within the input text
	Range() Range

	// Text returns the concatenation of all the tokens within the
	// value
	Text() string

	// String returns a compact, debugging friendly representation
	// of the value
	String() string

	// PrettyString returns the value formatted as a tree
	PrettyString() string

	value()
}

// Token Value

type ValueToken struct {
	rng   Range
	Value string
}

func NewValueToken(value string, rng Range) *ValueToken {
	return &ValueToken{rng: rng, Value: value}
}

func (n *ValueToken) Range() Range         { return n.rng }
func (n *ValueToken) Text() string         { return n.Value }
func (n *ValueToken) String() string       { return fmt.Sprintf(`"%s" @ %s`, n.Value, n.rng) }
func (n *ValueToken) PrettyString() string { return ppValue(n, plainFormat) }
func (*ValueToken) value()                 {}

// Empty Value

type ValueEmpty struct {
	rng Range
}

func NewValueEmpty(cursor int) *ValueEmpty {
	return &ValueEmpty{rng: NewRange(cursor, cursor)}
}

func (n *ValueEmpty) Range() Range         { return n.rng }
func (n *ValueEmpty) Text() string         { return "" }
func (n *ValueEmpty) String() string       { return fmt.Sprintf("<> @ %s", n.rng) }
func (n *ValueEmpty) PrettyString() string { return ppValue(n, plainFormat) }
func (*ValueEmpty) value()                 {}

// Nodes Value

type ValueNodes struct {
	rng   Range
	Items []Value
}

func NewValueNodes(items []Value, rng Range) *ValueNodes {
	return &ValueNodes{Items: items, rng: rng}
}

func (n *ValueNodes) Range() Range         { return n.rng }
func (n *ValueNodes) PrettyString() string { return ppValue(n, plainFormat) }
func (*ValueNodes) value()                 {}

func (n *ValueNodes) String() string {
	var s strings.Builder
	s.WriteString("<[")
	for i, item := range n.Items {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(item.String())
	}
	fmt.Fprintf(&s, "] @ %s>", n.rng)
	return s.String()
}

func (n *ValueNodes) Text() string {
	var s strings.Builder
	for _, item := range n.Items {
		s.WriteString(item.Text())
	}
	return s.String()
}

// Tokens returns all the tokens within `v`, in input order.  Empty
// values vanish and nested nodes are spliced into a single list.
func Tokens(v Value) []*ValueToken {
	var out []*ValueToken
	var walk func(Value)
	walk = func(v Value) {
		switch n := v.(type) {
		case *ValueToken:
			out = append(out, n)
		case *ValueNodes:
			for _, item := range n.Items {
				walk(item)
			}
		case *ValueEmpty:
		}
	}
	walk(v)
	return out
}
