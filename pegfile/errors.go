package pegfile

import (
	"errors"
	"fmt"

	"github.com/clarete/tinypeg"
)

// GrammarError is the error returned when a grammar file can't be
// read.  It's also what gets thrown, skipping any backtracking, when
// the grammar is well formed but can't be built, like a class that
// isn't a valid pattern.
type GrammarError struct {
	File     string
	Message  string
	Location tinypeg.Location
}

// Error returns the human readable representation of a grammar error
func (e *GrammarError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%s: %s", e.File, e.Location, e.Message)
	}
	return fmt.Sprintf("%s @ %s", e.Message, e.Location)
}

// backtrackingError is an internal error type that is captured by the
// Choice operator
type backtrackingError struct {
	Message  string
	Location tinypeg.Location
}

// Error returns the human readable representation of a backtracking error
func (e *backtrackingError) Error() string {
	return fmt.Sprintf("%s @ %s", e.Message, e.Location)
}

func isthrown(err error) bool {
	var gerr *GrammarError
	return errors.As(err, &gerr)
}
