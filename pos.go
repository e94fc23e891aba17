package tinypeg

import (
	"fmt"
	"sort"
)

//  ---- Range ----

// Range is a span of byte offsets within the input, end excluded
type Range struct{ Start, End int }

func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Str returns the slice of `text` covered by the range
func (r Range) Str(text string) string {
	return text[r.Start:r.End]
}

func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

//  ---- Location ----

// Location is the human readable form of a cursor.  Both Line and
// Column are 1-indexed; Cursor is the byte offset it was derived from.
type Location struct {
	Line   int
	Column int
	Cursor int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// ---- Position index ----

// posIndex maps byte offsets of an input to line/column locations.
// It's only built when a failure is surfaced to the caller, so the
// happy path never pays for it.
type posIndex struct {
	size int

	// lineStart holds byte 0-based offsets of each line start
	lineStart []int
}

func newPosIndex(input string) *posIndex {
	// Always include line 1 starting at offset 0.
	lineStart := make([]int, 1, 64)
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			// next line starts after '\n'
			lineStart = append(lineStart, i+1)
		}
	}
	return &posIndex{size: len(input), lineStart: lineStart}
}

func (pi *posIndex) LocationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > pi.size {
		cursor = pi.size
	}

	// Find first lineStart > cursor, then step back one.
	lineIdx := sort.Search(len(pi.lineStart), func(i int) bool {
		return pi.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}

	return Location{
		Line:   lineIdx + 1,
		Column: cursor - pi.lineStart[lineIdx] + 1,
		Cursor: cursor,
	}
}

// LocationAt computes the line and column of `cursor` within `text`
func LocationAt(text string, cursor int) Location {
	return newPosIndex(text).LocationAt(cursor)
}
