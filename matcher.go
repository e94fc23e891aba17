package tinypeg

import (
	"log/slog"
	"strings"
)

// GrammarMatcher matches inputs against a grammar.  It holds no state
// of its own between calls: every call to Match gets a fresh cursor
// and memo table, so a single matcher can serve concurrent callers.
type GrammarMatcher struct {
	grammar    *Grammar
	memoize    bool
	skipSpaces bool
	showFails  bool
	trace      bool
	logger     *slog.Logger
}

// SetLogger replaces the logger used when `parser.trace` is enabled
func (m *GrammarMatcher) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// Grammar returns the grammar the matcher was created with
func (m *GrammarMatcher) Grammar() *Grammar {
	return m.grammar
}

func (m *GrammarMatcher) Match(text string) (Value, int, error) {
	start := m.grammar.Start()
	if start == nil {
		return nil, 0, ErrEmptyGrammar
	}
	return m.MatchRule(start.Name, text)
}

func (m *GrammarMatcher) MatchRule(name, text string) (Value, int, error) {
	s := &matchState{matcher: m, text: text}
	if m.memoize {
		s.memo = make(map[memoKey]memoEntry)
	}

	rule, ok := m.grammar.Rule(name)
	if !ok {
		err := &ParsingError{Kind: UndefinedRule, Expected: name}
		return nil, 0, err.locate(newPosIndex(text))
	}

	value, err := s.matchRule(rule)
	if err != nil {
		return nil, s.cursor, err.pinpoint().locate(newPosIndex(text))
	}

	s.skipSpaces()

	if s.cursor != len(text) {
		err := &ParsingError{
			Kind:   TrailingInput,
			Offset: s.cursor,
			Found:  s.snippet(16),
		}
		if m.showFails && s.farthest != nil && s.farthest.Offset >= s.cursor {
			err.Farthest = s.farthest
		}
		return nil, s.cursor, err.locate(newPosIndex(text))
	}

	return value, s.cursor, nil
}

type memoKey struct {
	rule   string
	cursor int
}

type memoEntry struct {
	value Value
	end   int
	err   *ParsingError
}

// matchState is everything that lives for the duration of a single
// call to Match.  It's never shared.
type matchState struct {
	matcher *GrammarMatcher
	text    string
	cursor  int

	// memo is nil when memoization is disabled
	memo map[memoKey]memoEntry

	// stack is the chain of rules currently being matched
	stack []string

	// farthest is the terminal failure with the greatest offset
	farthest *ParsingError
}

func (s *matchState) matchRule(rule *Rule) (Value, *ParsingError) {
	start := s.cursor
	key := memoKey{rule: rule.Name, cursor: start}

	if s.memo != nil {
		if entry, ok := s.memo[key]; ok {
			if entry.err != nil {
				return nil, entry.err
			}
			s.cursor = entry.end
			return entry.value, nil
		}
	}

	if s.matcher.trace {
		s.matcher.logger.Debug("enter rule", "rule", rule.Name, "offset", start)
	}

	s.stack = append(s.stack, rule.Name)
	s.skipSpaces()
	value, err := s.match(rule.Body)
	s.stack = s.stack[:len(s.stack)-1]

	if err != nil {
		s.cursor = start
		err = err.inRule(rule.Name)
		if s.memo != nil {
			s.memo[key] = memoEntry{err: err}
		}
		if s.matcher.trace {
			s.matcher.logger.Debug("fail rule", "rule", rule.Name, "offset", start)
		}
		return nil, err
	}

	if s.memo != nil {
		s.memo[key] = memoEntry{value: value, end: s.cursor}
	}
	if s.matcher.trace {
		s.matcher.logger.Debug("leave rule", "rule", rule.Name, "offset", start, "end", s.cursor)
	}
	return value, nil
}

func (s *matchState) match(expr Expression) (Value, *ParsingError) {
	switch e := expr.(type) {
	case *LiteralExpr:
		return s.matchLiteral(e)
	case *CharClassExpr:
		return s.matchCharClass(e)
	case *SequenceExpr:
		return s.matchSequence(e)
	case *ChoiceExpr:
		return s.matchChoice(e)
	case *ZeroOrMoreExpr:
		return s.matchRepetition(e.Expr, 0)
	case *OneOrMoreExpr:
		return s.matchRepetition(e.Expr, 1)
	case *OptionalExpr:
		return s.matchOptional(e)
	case *AndExpr:
		return s.matchPredicate(e.Expr, true)
	case *NotExpr:
		return s.matchPredicate(e.Expr, false)
	case *ReferenceExpr:
		rule, ok := s.matcher.grammar.Rule(e.Name)
		if !ok {
			return nil, s.fail(&ParsingError{Kind: UndefinedRule, Offset: s.cursor, Expected: e.Name})
		}
		return s.matchRule(rule)
	default:
		panic("unknown expression type")
	}
}

func (s *matchState) matchLiteral(e *LiteralExpr) (Value, *ParsingError) {
	start := s.cursor
	if !strings.HasPrefix(s.text[start:], e.Value) {
		return nil, s.fail(&ParsingError{
			Kind:     LiteralMismatch,
			Offset:   start,
			Expected: e.Value,
			Found:    s.snippet(len(e.Value)),
		})
	}
	s.cursor += len(e.Value)
	token := NewValueToken(e.Value, NewRange(start, s.cursor))
	s.skipSpaces()
	return token, nil
}

func (s *matchState) matchCharClass(e *CharClassExpr) (Value, *ParsingError) {
	start := s.cursor
	n := e.prefix(s.text[start:])
	if n < 0 {
		return nil, s.fail(&ParsingError{
			Kind:     PatternMismatch,
			Offset:   start,
			Expected: e.Pattern,
			Found:    s.snippet(8),
		})
	}
	s.cursor += n
	token := NewValueToken(s.text[start:s.cursor], NewRange(start, s.cursor))
	s.skipSpaces()
	return token, nil
}

func (s *matchState) matchSequence(e *SequenceExpr) (Value, *ParsingError) {
	start := s.cursor
	items := make([]Value, 0, len(e.Items))
	for _, item := range e.Items {
		v, err := s.match(item)
		if err != nil {
			s.cursor = start
			return nil, &ParsingError{
				Kind:   SequenceFailure,
				Offset: start,
				Causes: []*ParsingError{err},
			}
		}
		items = append(items, v)
	}
	return NewValueNodes(items, NewRange(start, s.cursor)), nil
}

func (s *matchState) matchChoice(e *ChoiceExpr) (Value, *ParsingError) {
	start := s.cursor
	causes := make([]*ParsingError, 0, len(e.Items))
	for _, item := range e.Items {
		v, err := s.match(item)
		if err == nil {
			return v, nil
		}
		s.cursor = start
		causes = append(causes, err)
	}
	return nil, &ParsingError{
		Kind:   ChoiceExhausted,
		Offset: start,
		Causes: causes,
	}
}

// matchRepetition matches `expr` as many times as possible, failing
// if it matched less than `atLeast` times.  It also stops after a match
// that didn't move the cursor, since it would loop forever otherwise.
func (s *matchState) matchRepetition(expr Expression, atLeast int) (Value, *ParsingError) {
	start := s.cursor
	var items []Value
	for {
		pos := s.cursor
		v, err := s.match(expr)
		if err != nil {
			s.cursor = pos
			if len(items) < atLeast {
				s.cursor = start
				return nil, &ParsingError{
					Kind:   RepetitionFailure,
					Offset: start,
					Causes: []*ParsingError{err},
				}
			}
			break
		}
		items = append(items, v)
		if s.cursor == pos {
			break
		}
	}
	return NewValueNodes(items, NewRange(start, s.cursor)), nil
}

func (s *matchState) matchOptional(e *OptionalExpr) (Value, *ParsingError) {
	start := s.cursor
	v, err := s.match(e.Expr)
	if err != nil {
		s.cursor = start
		return NewValueEmpty(start), nil
	}
	return v, nil
}

// matchPredicate never consumes input.  It succeeds when whether
// `expr` matched or not agrees with `want`.
func (s *matchState) matchPredicate(expr Expression, want bool) (Value, *ParsingError) {
	start := s.cursor
	_, err := s.match(expr)

	// unconditionally backtrack as the predicate never consumes any input
	s.cursor = start

	if (err == nil) != want {
		perr := &ParsingError{
			Kind:     PredicateFailure,
			Offset:   start,
			Expected: predicateText(expr, want),
			Found:    s.snippet(8),
		}
		if err != nil {
			perr.Causes = []*ParsingError{err}
		}
		return nil, perr
	}
	return NewValueEmpty(start), nil
}

func predicateText(expr Expression, want bool) string {
	if want {
		return "&" + operand(expr)
	}
	return "!" + operand(expr)
}

// fail records `err` as the farthest failure if nothing failed past
// its offset yet, and returns it
func (s *matchState) fail(err *ParsingError) *ParsingError {
	if s.matcher.showFails && (s.farthest == nil || err.Offset > s.farthest.Offset) {
		farthest := *err
		farthest.Rules = make([]string, len(s.stack))
		copy(farthest.Rules, s.stack)
		s.farthest = &farthest
	}
	return err
}

func (s *matchState) skipSpaces() {
	if !s.matcher.skipSpaces {
		return
	}
	for s.cursor < len(s.text) && isSpace(s.text[s.cursor]) {
		s.cursor++
	}
}

func (s *matchState) snippet(n int) string {
	end := min(s.cursor+n, len(s.text))
	return s.text[s.cursor:end]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
