package pegfile

import "github.com/clarete/tinypeg"

// Parser is what the combinators below need from a parser: a rune
// cursor that can be saved and restored, and two kinds of errors.
// Errors made with NewError are caught by the combinators, which
// backtrack and try something else.  Errors made with Throw go all
// the way up.
type Parser interface {
	// Peek returns the rune under the cursor without moving it, or
	// eof at the end of the input
	Peek() rune

	// Any consumes the rune under the cursor.  It fails at the end
	// of the input.
	Any() (rune, error)

	Location() tinypeg.Location
	Backtrack(location tinypeg.Location)

	NewError(msg string) error
	Throw(msg string) error

	// ExpectRune consumes `r` or fails without moving the cursor
	ExpectRune(r rune) (rune, error)

	// ExpectRange consumes a rune between `l` and `r`, both
	// included, or fails without moving the cursor
	ExpectRange(l, r rune) (rune, error)

	ExpectRuneFn(r rune) ParserFn[rune]
	ExpectRangeFn(l, r rune) ParserFn[rune]
}

// ParserFn parses one thing of type T off of `p`.  Parsing functions
// returning different types compose through these, which is why the
// combinators are functions instead of methods.
type ParserFn[T any] func(p Parser) (T, error)

// attempt runs `fn`, restoring the cursor if it fails.  The second
// return value tells whether the error was thrown.
func attempt[T any](p Parser, fn ParserFn[T]) (T, bool, error) {
	start := p.Location()
	v, err := fn(p)
	if err != nil {
		p.Backtrack(start)
		return v, isthrown(err), err
	}
	return v, false, nil
}

// ZeroOrMore collects the outputs of `fn` until it fails.  It also
// stops after an output that consumed nothing, otherwise it would
// never finish.
func ZeroOrMore[T any](p Parser, fn ParserFn[T]) ([]T, error) {
	var items []T
	for {
		start := p.Location().Cursor
		v, thrown, err := attempt(p, fn)
		if thrown {
			return nil, err
		}
		if err != nil {
			return items, nil
		}
		items = append(items, v)
		if p.Location().Cursor == start {
			return items, nil
		}
	}
}

// OneOrMore is ZeroOrMore that fails when `fn` can't match once
func OneOrMore[T any](p Parser, fn ParserFn[T]) ([]T, error) {
	head, err := fn(p)
	if err != nil {
		return nil, err
	}
	tail, err := ZeroOrMore(p, fn)
	if err != nil {
		return nil, err
	}
	return append([]T{head}, tail...), nil
}

// Choice returns the output of the first function in `fns` that
// succeeds.  The cursor goes back to where it was before each try.
func Choice[T any](p Parser, fns []ParserFn[T]) (T, error) {
	var zero T
	for _, fn := range fns {
		v, thrown, err := attempt(p, fn)
		if thrown {
			return zero, err
		}
		if err == nil {
			return v, nil
		}
	}
	return zero, p.NewError("No alternative matched")
}

// ChoiceRune consumes whichever of `runes` is under the cursor
func ChoiceRune(p Parser, runes []rune) (rune, error) {
	fns := make([]ParserFn[rune], len(runes))
	for i, r := range runes {
		fns[i] = p.ExpectRuneFn(r)
	}
	return Choice(p, fns)
}

// Not succeeds, without consuming anything, when `fn` fails
func Not[T any](p Parser, fn ParserFn[T]) (T, error) {
	var zero T
	start := p.Location()
	_, err := fn(p)
	p.Backtrack(start)

	switch {
	case err == nil:
		return zero, p.NewError("Unexpected match")
	case isthrown(err):
		return zero, err
	}
	return zero, nil
}
