package tinypeg

import (
	"log/slog"
)

// Matcher is the interface of anything that can turn an input text
// into the untyped value tree of a grammar
type Matcher interface {
	// Match matches the whole `text` against the start rule and
	// returns the value and the cursor position where matching
	// stopped
	Match(text string) (Value, int, error)

	// MatchRule is the same as Match but starts from the rule
	// named `rule` instead of the start rule
	MatchRule(rule, text string) (Value, int, error)
}

// MatcherFromGrammar returns a matcher for `grammar` configured with
// `cfg`.  If `grammar.validate` is enabled, the grammar is checked for
// undefined rules before a matcher is returned.
func MatcherFromGrammar(grammar *Grammar, cfg *Config) (*GrammarMatcher, error) {
	if cfg.GetBool("grammar.validate") {
		if err := grammar.Validate(); err != nil {
			return nil, err
		}
	}
	return &GrammarMatcher{
		grammar:    grammar,
		memoize:    cfg.GetBool("parser.memoize"),
		skipSpaces: cfg.GetBool("parser.skip_spaces"),
		showFails:  cfg.GetBool("parser.show_fails"),
		trace:      cfg.GetBool("parser.trace"),
		logger:     slog.Default(),
	}, nil
}

// Parse matches `text` against `grammar` using the default
// configuration.  The whole input must be consumed.
func Parse(grammar *Grammar, text string) (Value, error) {
	m, err := MatcherFromGrammar(grammar, NewConfig())
	if err != nil {
		return nil, err
	}
	v, _, err := m.Match(text)
	return v, err
}
