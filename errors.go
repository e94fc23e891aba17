package tinypeg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyGrammar is returned when matching against a grammar without
// any rules
var ErrEmptyGrammar = errors.New("grammar has no rules")

// FailureKind tells which combinator gave up on the input
type FailureKind int

const (
	UndefinedRule FailureKind = iota
	LiteralMismatch
	PatternMismatch
	SequenceFailure
	ChoiceExhausted
	RepetitionFailure
	PredicateFailure
	TrailingInput
)

var failureKindNames = map[FailureKind]string{
	UndefinedRule:     "UndefinedRule",
	LiteralMismatch:   "LiteralMismatch",
	PatternMismatch:   "PatternMismatch",
	SequenceFailure:   "SequenceFailure",
	ChoiceExhausted:   "ChoiceExhausted",
	RepetitionFailure: "RepetitionFailure",
	PredicateFailure:  "PredicateFailure",
	TrailingInput:     "TrailingInput",
}

func (k FailureKind) String() string { return failureKindNames[k] }

// ParsingError is the failure value produced by the matcher.  Within
// the matcher it's what drives backtracking; the one that reaches
// the top of a match is handed to the caller as an `error`.
type ParsingError struct {
	Kind FailureKind

	// Offset is the byte offset where the failing expression
	// started matching.  On errors returned to the caller, it's
	// where the deepest failure that caused this one happened.
	Offset int

	// Location is the line/column form of Offset.  It's only set
	// on errors returned to the caller.
	Location Location

	// Rules is the chain of rules that were being matched when
	// the failure happened, outermost first.  Within the matcher
	// it only holds the rules entered below the expression that
	// wraps the error in its Causes.
	Rules []string

	// Expected holds the literal text, the pattern or the rule
	// name that failed to match
	Expected string

	// Found holds a snippet of the input found at Offset
	Found string

	// Causes holds the failures of the sub-expressions: the
	// failing item of a sequence or repetition, or every
	// alternative of a choice
	Causes []*ParsingError

	// Farthest is the failure that happened at the greatest
	// offset during the whole match.  It's only attached to
	// `TrailingInput` errors when `parser.show_fails` is enabled.
	Farthest *ParsingError
}

// Error returns the human readable representation of a parsing error
func (e *ParsingError) Error() string {
	var s strings.Builder
	s.WriteString(e.Message())
	if e.Location.Line > 0 {
		fmt.Fprintf(&s, " @ %s", e.Location)
	} else {
		fmt.Fprintf(&s, " @ %d", e.Offset)
	}
	if len(e.Rules) > 0 {
		fmt.Fprintf(&s, " in %s", strings.Join(e.Rules, " > "))
	}
	if e.Farthest != nil {
		fmt.Fprintf(&s, " (farthest failure: %s)", e.Farthest.Error())
	}
	return s.String()
}

// Message describes the failure without its position
func (e *ParsingError) Message() string {
	switch e.Kind {
	case UndefinedRule:
		return fmt.Sprintf("undefined rule: `%s`", e.Expected)
	case LiteralMismatch:
		return fmt.Sprintf("expected '%s', found %s", escapeLiteral(e.Expected), e.found())
	case PatternMismatch:
		return fmt.Sprintf("expected pattern `%s`, found %s", e.Expected, e.found())
	case PredicateFailure:
		return fmt.Sprintf("predicate %s failed, found %s", e.Expected, e.found())
	case SequenceFailure:
		if len(e.Causes) > 0 {
			return e.Causes[0].Message()
		}
		return "sequence failed"
	case ChoiceExhausted:
		expected := make([]string, len(e.Causes))
		for i, cause := range e.Causes {
			expected[i] = cause.describe()
		}
		return fmt.Sprintf("expected one of: %s", strings.Join(expected, ", "))
	case RepetitionFailure:
		if len(e.Causes) > 0 {
			return fmt.Sprintf("expected at least one %s", e.Causes[0].describe())
		}
		return "expected at least one match"
	case TrailingInput:
		return fmt.Sprintf("unexpected trailing input at offset %d", e.Offset)
	default:
		return e.Kind.String()
	}
}

func (e *ParsingError) found() string {
	if e.Found == "" {
		return "end of input"
	}
	return "'" + escapeLiteral(e.Found) + "'"
}

// describe names what was expected in a way short enough to be
// listed next to the other alternatives of a choice
func (e *ParsingError) describe() string {
	if len(e.Rules) > 0 {
		return e.Rules[0]
	}
	switch e.Kind {
	case LiteralMismatch:
		return "'" + escapeLiteral(e.Expected) + "'"
	case PatternMismatch:
		return "`" + e.Expected + "`"
	case UndefinedRule, PredicateFailure:
		return e.Expected
	case SequenceFailure, RepetitionFailure:
		if len(e.Causes) > 0 {
			return e.Causes[0].describe()
		}
	case ChoiceExhausted:
		expected := make([]string, len(e.Causes))
		for i, cause := range e.Causes {
			expected[i] = cause.describe()
		}
		return "(" + strings.Join(expected, " / ") + ")"
	}
	return e.Kind.String()
}

// inRule returns a copy of the error with `name` prepended to its
// rule chain.  Errors are shared through the memo table, so they're
// never modified in place.
func (e *ParsingError) inRule(name string) *ParsingError {
	wrapped := *e
	wrapped.Rules = make([]string, 0, len(e.Rules)+1)
	wrapped.Rules = append(wrapped.Rules, name)
	wrapped.Rules = append(wrapped.Rules, e.Rules...)
	return &wrapped
}

// pinpoint returns a copy of the error moved to the deepest failure
// that caused it, with the rule chain of every level in between.
// The structure stays the same, so the message still comes from the
// causes.
func (e *ParsingError) pinpoint() *ParsingError {
	leaf, rules := e.deepest()
	if leaf == e {
		return e
	}
	pinned := *e
	pinned.Offset = leaf.Offset
	pinned.Rules = rules
	return &pinned
}

// deepest follows the causes that certainly led to the failure: the
// failing item of a sequence or repetition, and the alternative of a
// choice that went farther than all the others.  A tie between
// alternatives, or a predicate, stops the descent.
func (e *ParsingError) deepest() (*ParsingError, []string) {
	var (
		next  *ParsingError
		rules []string
	)
	switch e.Kind {
	case SequenceFailure, RepetitionFailure:
		if len(e.Causes) == 1 {
			next, rules = e.Causes[0].deepest()
		}
	case ChoiceExhausted:
		tie := false
		for _, cause := range e.Causes {
			leaf, chain := cause.deepest()
			switch {
			case next == nil || leaf.Offset > next.Offset:
				next, rules, tie = leaf, chain, false
			case leaf.Offset == next.Offset:
				tie = true
			}
		}
		if tie {
			next = nil
		}
	}
	if next == nil {
		return e, e.Rules
	}
	chain := make([]string, 0, len(e.Rules)+len(rules))
	chain = append(chain, e.Rules...)
	return next, append(chain, rules...)
}

// locate fills in the Location of the error, and of the farthest
// failure attached to it
func (e *ParsingError) locate(pi *posIndex) *ParsingError {
	located := *e
	located.Location = pi.LocationAt(e.Offset)
	if e.Farthest != nil {
		located.Farthest = e.Farthest.locate(pi)
	}
	return &located
}
