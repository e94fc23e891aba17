package tinypeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharClassWidth(t *testing.T) {
	for _, test := range []struct {
		Pattern string
		Width   int
		Scanned bool
	}{
		{`var\b`, 3, false},
		{`(?:true|false)\b`, 5, false},
		{`'(?:[^'\\]|\\.)'`, 1 + 5 + 1, false},
		{`(?s).`, 4, true},
		{`é`, 2, true},
		{`a{2,3}`, 3, true},
		{`[0-9]+`, unbounded, true},
		{`[a-zA-Z_][a-zA-Z0-9_]*`, unbounded, true},
		{`#[^\n]*`, unbounded, true},
		{`"(?:[^"\\]|\\.)*"`, unbounded, true},
		{`a*ab`, unbounded, false},
		{`(?:a|ab)*`, unbounded, false},
		{`[a-z]*[0-9]?x`, unbounded, false},
		{`(?i)abc+`, unbounded, false},
	} {
		t.Run(test.Pattern, func(t *testing.T) {
			e, err := CompileCharClass(test.Pattern)
			require.NoError(t, err)
			assert.Equal(t, test.Width, e.width)
			assert.Equal(t, test.Scanned, e.scan != nil)
		})
	}
}

func TestCharClassPrefixAgreesWithRegex(t *testing.T) {
	long := strings.Repeat("x", 300)
	for _, test := range []struct {
		Pattern string
		Inputs  []string
	}{
		{`[0-9]+`, []string{"123abc", "abc", "", "9", "12 34"}},
		{`[a-zA-Z_][a-zA-Z0-9_]*`, []string{"foo_1 bar", "_", "1abc", "x" + long}},
		{`#[^\n]*`, []string{"# comment\nnext", "#", "no", "#" + long}},
		{`"(?:[^"\\]|\\.)*"`, []string{`"a\"b" rest`, `"unterminated`, `"ends with \`, `""`, `"é"`, `x`, `"` + long + `"`}},
		{`var\b`, []string{"var x", "variable", "var", "va"}},
		{`(?:true|false)\b`, []string{"true)", "falsey", "false"}},
		{`'(?:[^'\\]|\\.)'`, []string{`'a'`, `'\n'`, `'ab'`}},
		{`a|ab`, []string{"abc", "a", "xab"}},
		{`a*ab`, []string{"aaab", "aa"}},
		{`[a-z]+\d?`, []string{"abc1d", "abc", "1"}},
		{`(?s).`, []string{"\n", "é", ""}},
		{`x$`, []string{"x", "xy", "x" + long}},
	} {
		t.Run(test.Pattern, func(t *testing.T) {
			e, err := CompileCharClass(test.Pattern)
			require.NoError(t, err)
			for _, input := range test.Inputs {
				assert.Equal(t, e.regexPrefix(input), e.prefix(input), "input %q", input)
			}
		})
	}
}

func TestCharClassInvalidUTF8(t *testing.T) {
	e, err := CompileCharClass(`[a-z]+`)
	require.NoError(t, err)
	require.NotNil(t, e.scan)

	// the scanner leaves undecodable input to the regex engine
	_, ok := e.scan.prefix("ab\xff")
	assert.False(t, ok)
	assert.Equal(t, e.regexPrefix("ab\xff"), e.prefix("ab\xff"))
}
