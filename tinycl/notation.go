package tinycl

import (
	_ "embed"
)

//go:embed tinycl.peg
var notation string

// Notation returns the TinyCL grammar written in PEG notation, as
// read by the pegfile package
func Notation() string {
	return notation
}
