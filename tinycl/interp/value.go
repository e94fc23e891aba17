package interp

import (
	"strconv"
	"strings"
)

// Value is what expressions evaluate to.  It's always one of int64,
// string, bool, []Value or nil.
type Value = any

// Format returns the text `print` writes for `v`
func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []Value:
		items := make([]string, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok {
				items[i] = strconv.Quote(s)
				continue
			}
			items[i] = Format(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return "<invalid>"
}

// Truthy is how conditions see values: false, zero, empty strings,
// empty arrays and nil are false
func Truthy(v Value) bool {
	switch v := v.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		return v != ""
	case []Value:
		return len(v) > 0
	}
	return false
}

// TypeName returns the name used for the type of `v` in error
// messages
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case int64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []Value:
		return "array"
	}
	return "invalid"
}

func equal(a, b Value) bool {
	switch a := a.(type) {
	case []Value:
		bs, ok := b.([]Value)
		if !ok || len(a) != len(bs) {
			return false
		}
		for i := range a {
			if !equal(a[i], bs[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
