// Package pegfile reads grammars written in PEG notation into
// tinypeg grammars, and writes them back out as Go source.
//
// The notation is the one from Ford's paper with a few additions:
// definitions may use either `<-` or `=`, `#` starts a comment that
// runs until the end of the line and raw patterns can be written
// between backquotes.
//
//	Number <- [0-9]+
//	Sum    <- Number ('+' Number)*
//	Word   <- `[a-z]+\b`
package pegfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/clarete/tinypeg"
)

// Load parses `src` and returns the grammar it describes, named
// after `name`
func Load(name, src string) (*tinypeg.Grammar, error) {
	return NewGrammarParser(name, src).Parse()
}

// LoadFile reads the grammar file at `path`.  The grammar is named
// after the file name without its extension.
func LoadFile(path string) (*tinypeg.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't read grammar file")
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	g, err := Load(name, string(data))
	if err != nil {
		var gerr *GrammarError
		if errors.As(err, &gerr) {
			located := *gerr
			located.File = path
			return nil, &located
		}
		return nil, errors.Wrapf(err, "can't load grammar %s", path)
	}
	return g, nil
}
