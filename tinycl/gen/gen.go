// Package gen translates TinyCL programs into the source code of
// other languages.
//
// The python target keeps the semantics of the interpreter: values
// are dynamically typed and functions see the variables of their
// caller.  The c target only knows about integers, and its functions
// only see their own parameters and variables.
package gen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	peg "github.com/clarete/tinypeg"
	"github.com/clarete/tinypeg/tinycl"
)

const header = "Code generated by tinycl compile. DO NOT EDIT."

// Error is returned when a program uses something the target can't
// express
type Error struct {
	Target string

	// Range is where the offending node is in the source text
	Range peg.Range

	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("can't compile to %s: %s", e.Target, e.Message)
}

var targets = map[string]func(*tinycl.Program) (string, error){
	"c":      genC,
	"python": genPython,
}

// Targets returns the names of the languages Compile knows, sorted
func Targets() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile returns the source of `program` written in `target`
func Compile(program *tinycl.Program, target string) (string, error) {
	fn, ok := targets[target]
	if !ok {
		return "", errors.Errorf("unknown target %q, expected one of: %s", target, strings.Join(Targets(), ", "))
	}
	return fn(program)
}
