package tinypeg

import (
	"regexp/syntax"
	"unicode"
	"unicode/utf8"
)

// unbounded is the width of patterns that can match any amount of
// input, like `[0-9]+`
const unbounded = -1

// patternWidth returns the maximum number of bytes a match of `re`
// can span, or `unbounded`
func patternWidth(re *syntax.Regexp) int {
	switch re.Op {
	case syntax.OpNoMatch, syntax.OpEmptyMatch,
		syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return 0
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return len(re.Rune) * utf8.UTFMax
		}
		n := 0
		for _, r := range re.Rune {
			n += utf8.RuneLen(r)
		}
		return n
	case syntax.OpCharClass:
		if len(re.Rune) == 0 {
			return 0
		}
		return utf8.RuneLen(re.Rune[len(re.Rune)-1])
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return utf8.UTFMax
	case syntax.OpCapture, syntax.OpQuest:
		return patternWidth(re.Sub[0])
	case syntax.OpStar, syntax.OpPlus:
		if patternWidth(re.Sub[0]) == 0 {
			return 0
		}
		return unbounded
	case syntax.OpRepeat:
		w := patternWidth(re.Sub[0])
		switch {
		case w == 0:
			return 0
		case w == unbounded || re.Max < 0:
			return unbounded
		}
		return w * re.Max
	case syntax.OpConcat:
		n := 0
		for _, sub := range re.Sub {
			w := patternWidth(sub)
			if w == unbounded {
				return unbounded
			}
			n += w
		}
		return n
	case syntax.OpAlternate:
		n := 0
		for _, sub := range re.Sub {
			w := patternWidth(sub)
			if w == unbounded {
				return unbounded
			}
			n = max(n, w)
		}
		return n
	}
	return unbounded
}

// runeSet is a sorted list of inclusive rune ranges, laid out like
// `syntax.Regexp.Rune` for character classes: lo0, hi0, lo1, hi1...
type runeSet []rune

var (
	anyRune      = runeSet{0, unicode.MaxRune}
	anyRuneNotNL = runeSet{0, '\n' - 1, '\n' + 1, unicode.MaxRune}
)

func (s runeSet) contains(r rune) bool {
	for i := 0; i < len(s); i += 2 {
		if r < s[i] {
			return false
		}
		if r <= s[i+1] {
			return true
		}
	}
	return false
}

func (s runeSet) overlaps(o runeSet) bool {
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i+1] < o[j]:
			i += 2
		case o[j+1] < s[i]:
			j += 2
		default:
			return true
		}
	}
	return false
}

// branch is a fixed run of runes, each one taken from its set
type branch []runeSet

// scanStep repeats one of its branches between min and max times.
// No two branches start with the same rune, so the rune under the
// cursor tells which one to take.
type scanStep struct {
	branches []branch
	min, max int
}

func (st scanStep) first() runeSet {
	var s runeSet
	for _, b := range st.branches {
		s = mergeSets(s, b[0])
	}
	return s
}

// scanner matches, without the regex engine, patterns that never
// need backtracking: a sequence of steps where a repeated step can't
// start with the same rune as the step that follows it.  Taking as
// many repetitions as possible is then the longest match.
type scanner []scanStep

// newScanner returns nil when `re` doesn't have that shape
func newScanner(re *syntax.Regexp) scanner {
	var sc scanner
	if !sc.add(re) {
		return nil
	}
	for i, st := range sc {
		if st.min == st.max || i == len(sc)-1 {
			continue
		}
		next := sc[i+1]
		if next.min == 0 || st.first().overlaps(next.first()) {
			return nil
		}
	}
	return sc
}

func (sc *scanner) add(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return true
	case syntax.OpCapture:
		return sc.add(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !sc.add(sub) {
				return false
			}
		}
		return true
	case syntax.OpLiteral:
		b, ok := newBranch(re)
		if !ok {
			return false
		}
		for _, set := range b {
			*sc = append(*sc, scanStep{branches: []branch{{set}}, min: 1, max: 1})
		}
		return true
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		b, _ := newBranch(re)
		*sc = append(*sc, scanStep{branches: []branch{b}, min: 1, max: 1})
		return true
	case syntax.OpStar, syntax.OpPlus, syntax.OpQuest:
		branches, ok := newBranches(re.Sub[0])
		if !ok {
			return false
		}
		st := scanStep{branches: branches, max: unbounded}
		if re.Op == syntax.OpPlus {
			st.min = 1
		}
		if re.Op == syntax.OpQuest {
			st.max = 1
		}
		*sc = append(*sc, st)
		return true
	}
	return false
}

// newBranches reads the body of a repetition: alternatives of fixed
// runs starting with distinct runes
func newBranches(re *syntax.Regexp) ([]branch, bool) {
	if re.Op == syntax.OpCapture {
		return newBranches(re.Sub[0])
	}
	alts := []*syntax.Regexp{re}
	if re.Op == syntax.OpAlternate {
		alts = re.Sub
	}
	var (
		branches []branch
		seen     runeSet
	)
	for _, alt := range alts {
		b, ok := newBranch(alt)
		if !ok || len(b) == 0 || b[0].overlaps(seen) {
			return nil, false
		}
		seen = mergeSets(seen, b[0])
		branches = append(branches, b)
	}
	return branches, true
}

func newBranch(re *syntax.Regexp) (branch, bool) {
	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return nil, false
		}
		b := make(branch, len(re.Rune))
		for i, r := range re.Rune {
			b[i] = runeSet{r, r}
		}
		return b, true
	case syntax.OpCharClass:
		if len(re.Rune) == 0 {
			return nil, false
		}
		return branch{runeSet(re.Rune)}, true
	case syntax.OpAnyChar:
		return branch{anyRune}, true
	case syntax.OpAnyCharNotNL:
		return branch{anyRuneNotNL}, true
	case syntax.OpCapture:
		return newBranch(re.Sub[0])
	case syntax.OpConcat:
		var b branch
		for _, sub := range re.Sub {
			sb, ok := newBranch(sub)
			if !ok {
				return nil, false
			}
			b = append(b, sb...)
		}
		return b, true
	}
	return nil, false
}

// mergeSets returns the sorted union of two sets.  Overlapping
// ranges aren't coalesced, which `overlaps` doesn't need.
func mergeSets(a, b runeSet) runeSet {
	out := make(runeSet, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		if j >= len(b) || (i < len(a) && a[i] <= b[j]) {
			out = append(out, a[i], a[i+1])
			i += 2
		} else {
			out = append(out, b[j], b[j+1])
			j += 2
		}
	}
	return out
}

// prefix returns the length of the longest prefix of `s` the scanner
// matches, or -1.  The second value is false when `s` isn't valid
// UTF-8 under the cursor, which is left for the regex engine to
// decide.
func (sc scanner) prefix(s string) (int, bool) {
	pos := 0
	for _, st := range sc {
		count := 0
		for st.max == unbounded || count < st.max {
			n, ok := st.once(s[pos:])
			if !ok {
				return 0, false
			}
			if n < 0 {
				break
			}
			pos += n
			count++
		}
		if count < st.min {
			return -1, true
		}
	}
	return pos, true
}

// once matches one repetition of the step, returning -1 when no
// branch matches
func (st scanStep) once(s string) (int, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return -1, true
	}
	if r == utf8.RuneError && size == 1 {
		return 0, false
	}
	for _, b := range st.branches {
		if !b[0].contains(r) {
			continue
		}
		pos := size
		for _, set := range b[1:] {
			r, size := utf8.DecodeRuneInString(s[pos:])
			if r == utf8.RuneError && size == 1 {
				return 0, false
			}
			if size == 0 || !set.contains(r) {
				return -1, true
			}
			pos += size
		}
		return pos, true
	}
	return -1, true
}
