package tinycl

import (
	"fmt"

	peg "github.com/clarete/tinypeg"
)

// ReconstructionError is returned when the input matched the grammar
// but the match tree can't be turned into syntax tree nodes.  It's
// kept apart from *tinypeg.ParsingError so callers can tell both
// situations apart.
type ReconstructionError struct {
	// Level is the grammar rule or expression level being built
	Level string

	// Offset is where the offending tokens start
	Offset int

	// Location is filled in when the source text is known
	Location peg.Location

	Message string
}

func (e *ReconstructionError) Error() string {
	if e.Location.Line > 0 {
		return fmt.Sprintf("can't build %s: %s @ %s", e.Level, e.Message, e.Location)
	}
	return fmt.Sprintf("can't build %s: %s @ %d", e.Level, e.Message, e.Offset)
}

func newReconstructionError(level string, offset int, format string, args ...any) *ReconstructionError {
	return &ReconstructionError{
		Level:   level,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}
