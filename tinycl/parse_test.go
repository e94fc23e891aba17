package tinycl

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	peg "github.com/clarete/tinypeg"
)

func TestParseExpression(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "Subtraction is left associative",
			Input:    "10 - 3 - 2",
			Expected: `BinaryOp("-", BinaryOp("-", Number(10), Number(3)), Number(2))`,
		},
		{
			Name:     "Factor binds tighter than term",
			Input:    "2 + 3 * 4",
			Expected: `BinaryOp("+", Number(2), BinaryOp("*", Number(3), Number(4)))`,
		},
		{
			Name:     "Parenthesis override precedence",
			Input:    "(2 + 3) * 4",
			Expected: `BinaryOp("*", BinaryOp("+", Number(2), Number(3)), Number(4))`,
		},
		{
			Name:     "Chained indexing",
			Input:    "a[0][1]",
			Expected: `ArrayAccess(ArrayAccess(Identifier(a), Number(0)), Number(1))`,
		},
		{
			Name:     "Mixed factor operators fold from the left",
			Input:    "7 % 3 * 2",
			Expected: `BinaryOp("*", BinaryOp("%", Number(7), Number(3)), Number(2))`,
		},
		{
			Name:     "Unary minus vs subtraction",
			Input:    "-a - -1",
			Expected: `BinaryOp("-", UnaryOp("-", Identifier(a)), UnaryOp("-", Number(1)))`,
		},
		{
			Name:     "Unary binds looser than indexing",
			Input:    "-x[0]",
			Expected: `UnaryOp("-", ArrayAccess(Identifier(x), Number(0)))`,
		},
		{
			Name:     "Logical operators",
			Input:    "!a && b || c",
			Expected: `BinaryOp("||", BinaryOp("&&", UnaryOp("!", Identifier(a)), Identifier(b)), Identifier(c))`,
		},
		{
			Name:     "Equality is looser than comparison",
			Input:    "a == b < c",
			Expected: `BinaryOp("==", Identifier(a), BinaryOp("<", Identifier(b), Identifier(c)))`,
		},
		{
			Name:     "Two comparisons under one equality",
			Input:    "a <= b != c >= d",
			Expected: `BinaryOp("!=", BinaryOp("<=", Identifier(a), Identifier(b)), BinaryOp(">=", Identifier(c), Identifier(d)))`,
		},
		{
			Name:     "Calls and array literals",
			Input:    "f(1, g(2), [3, 4])",
			Expected: `FunctionCall("f", [Number(1), FunctionCall("g", [Number(2)]), ArrayLiteral([Number(3), Number(4)])])`,
		},
		{
			Name:     "Call without arguments",
			Input:    "f()",
			Expected: `FunctionCall("f", [])`,
		},
		{
			Name:     "Empty array",
			Input:    "[]",
			Expected: `ArrayLiteral([])`,
		},
		{
			Name:     "Indexing the result of a call",
			Input:    "m(1)[i + 1] * 2",
			Expected: `BinaryOp("*", ArrayAccess(FunctionCall("m", [Number(1)]), BinaryOp("+", Identifier(i), Number(1))), Number(2))`,
		},
		{
			Name:     "Grouped expression indexed",
			Input:    "(a)[0]",
			Expected: `ArrayAccess(Identifier(a), Number(0))`,
		},
		{
			Name:     "String",
			Input:    `"hi there"`,
			Expected: `String("hi there")`,
		},
		{
			Name:     "String with escapes",
			Input:    `"a\"b\n"`,
			Expected: `String("a\"b\n")`,
		},
		{
			Name:     "Character",
			Input:    `'a'`,
			Expected: `Character('a')`,
		},
		{
			Name:     "Boolean",
			Input:    "true",
			Expected: `Boolean(true)`,
		},
		{
			Name:     "Identifier prefixed by a boolean",
			Input:    "trueish",
			Expected: `Identifier(trueish)`,
		},
		{
			Name:     "String concatenation",
			Input:    `"a" + 1`,
			Expected: `BinaryOp("+", String("a"), Number(1))`,
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			expr, err := ParseExpression(test.Input)
			require.NoError(t, err)
			assert.Equal(t, test.Expected, expr.String())
		})
	}
}

func TestParseStatement(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "Variable declaration",
			Input:    "var x = 1 + 2 * 3;",
			Expected: `VariableDecl("x", BinaryOp("+", Number(1), BinaryOp("*", Number(2), Number(3))))`,
		},
		{
			Name:     "Constant declaration",
			Input:    "const k = 3;",
			Expected: `ConstantDecl("k", Number(3))`,
		},
		{
			Name:     "Assignment",
			Input:    "x = x + 1;",
			Expected: `Assignment("x", BinaryOp("+", Identifier(x), Number(1)))`,
		},
		{
			Name:     "Assignment to a name prefixed by a keyword",
			Input:    "variable = 1;",
			Expected: `Assignment("variable", Number(1))`,
		},
		{
			Name:     "Assignment to a name that is a keyword",
			Input:    "print = 1;",
			Expected: `Assignment("print", Number(1))`,
		},
		{
			Name:     "Print",
			Input:    "print(x);",
			Expected: `Print(Identifier(x))`,
		},
		{
			Name:     "Bare return",
			Input:    "return;",
			Expected: `Return()`,
		},
		{
			Name:     "Return with value",
			Input:    "return x * 2;",
			Expected: `Return(BinaryOp("*", Identifier(x), Number(2)))`,
		},
		{
			Name:     "Call statement",
			Input:    "f(1, 2);",
			Expected: `FunctionCallStmt("f", [Number(1), Number(2)])`,
		},
		{
			Name:     "Call statement without arguments",
			Input:    "f();",
			Expected: `FunctionCallStmt("f", [])`,
		},
		{
			Name:     "While",
			Input:    "while (i < 3) { i = i + 1; }",
			Expected: `While(BinaryOp("<", Identifier(i), Number(3)), Block(Assignment("i", BinaryOp("+", Identifier(i), Number(1)))))`,
		},
		{
			Name:     "If with else",
			Input:    "if (a) { print(1); } else { print(2); }",
			Expected: `If(Identifier(a), Block(Print(Number(1))), Block(Print(Number(2))))`,
		},
		{
			Name:     "If without else",
			Input:    "if (a == 1) {}",
			Expected: `If(BinaryOp("==", Identifier(a), Number(1)), Block())`,
		},
		{
			Name:     "Else if chain",
			Input:    "if (a) {} else if (b) {} else {}",
			Expected: `If(Identifier(a), Block(), Block(If(Identifier(b), Block(), Block())))`,
		},
		{
			Name:     "Function declaration",
			Input:    "func add(a, b) { return a + b; }",
			Expected: `FunctionDecl("add", [a, b], Block(Return(BinaryOp("+", Identifier(a), Identifier(b)))))`,
		},
		{
			Name:     "Function declaration without parameters",
			Input:    "func f() {}",
			Expected: `FunctionDecl("f", [], Block())`,
		},
		{
			Name:     "Comment",
			Input:    "# a note",
			Expected: `Comment("# a note")`,
		},
		{
			Name:     "Block",
			Input:    "{ var y = 2; }",
			Expected: `Block(VariableDecl("y", Number(2)))`,
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			stmt, err := ParseRule("Statement", test.Input)
			require.NoError(t, err)
			assert.Equal(t, test.Expected, stmt.String())
		})
	}
}

func TestDefaultParserIsShared(t *testing.T) {
	for _, test := range []struct {
		Name string
		Call func() error
	}{
		{"Parse", func() error { _, err := Parse("print(1);"); return err }},
		{"ParseRule", func() error { _, err := ParseRule("Statement", "x = 1;"); return err }},
		{"ParseExpression", func() error { _, err := ParseExpression("1 + 2"); return err }},
	} {
		t.Run(test.Name, func(t *testing.T) {
			first := defaultParser()
			require.NoError(t, test.Call())
			assert.Same(t, first, defaultParser())
			assert.Same(t, first.matcher, defaultParser().matcher)
		})
	}
}

func TestParseStatementRules(t *testing.T) {
	for _, test := range []struct {
		Rule     string
		Input    string
		Expected string
	}{
		{"VariableDecl", "var x = 1;", `VariableDecl("x", Number(1))`},
		{"ConstantDecl", "const k = 3;", `ConstantDecl("k", Number(3))`},
		{"IfStatement", "if (a) {} else if (b) {}", `If(Identifier(a), Block(), Block(If(Identifier(b), Block())))`},
		{"WhileStatement", "while (x) { x = 0; }", `While(Identifier(x), Block(Assignment("x", Number(0))))`},
		{"PrintStatement", "print(1 + 2);", `Print(BinaryOp("+", Number(1), Number(2)))`},
		{"ReturnStatement", "return;", `Return()`},
		{"ReturnStatement", "return n;", `Return(Identifier(n))`},
		{"AssignmentStatement", "x = 2;", `Assignment("x", Number(2))`},
		{"AssignmentStatement", "print = 1;", `Assignment("print", Number(1))`},
		{"FunctionDecl", "func f(a) { return a; }", `FunctionDecl("f", [a], Block(Return(Identifier(a))))`},
		{"FunctionCallStatement", "f(1);", `FunctionCallStmt("f", [Number(1)])`},
		{"FunctionCallStatement", "print(x);", `FunctionCallStmt("print", [Identifier(x)])`},
	} {
		t.Run(test.Rule+" "+test.Input, func(t *testing.T) {
			node, err := ParseRule(test.Rule, test.Input)
			require.NoError(t, err)
			assert.Equal(t, test.Expected, node.String())
		})
	}

	t.Run("Value of another statement rule", func(t *testing.T) {
		m, err := peg.MatcherFromGrammar(Grammar(), peg.NewConfig())
		require.NoError(t, err)
		value, _, err := m.MatchRule("VariableDecl", "var x = 1;")
		require.NoError(t, err)

		_, err = Build("WhileStatement", value)
		var rerr *ReconstructionError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, "WhileStatement", rerr.Level)
	})
}

func TestParseProgram(t *testing.T) {
	src := `
# computes the factorial of n
func fact(n) {
    if (n <= 1) {
        return 1;
    }
    return n * fact(n - 1);
}

var xs = [1, 2, 3];
print(fact(xs[2]));
`
	program, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, program.Statements, 4)

	assert.Equal(t, `Comment("# computes the factorial of n")`, program.Statements[0].String())
	assert.Equal(t,
		`FunctionDecl("fact", [n], Block(`+
			`If(BinaryOp("<=", Identifier(n), Number(1)), Block(Return(Number(1)))), `+
			`Return(BinaryOp("*", Identifier(n), FunctionCall("fact", [BinaryOp("-", Identifier(n), Number(1))])))))`,
		program.Statements[1].String())
	assert.Equal(t, `VariableDecl("xs", ArrayLiteral([Number(1), Number(2), Number(3)]))`, program.Statements[2].String())
	assert.Equal(t, `Print(FunctionCall("fact", [ArrayAccess(Identifier(xs), Number(2))]))`, program.Statements[3].String())

	t.Run("Ranges point back to the source", func(t *testing.T) {
		decl := program.Statements[2].(*VariableDecl)
		assert.Equal(t, "var xs = [1, 2, 3];", decl.Range().Str(src))
		assert.Equal(t, "[1, 2, 3]", decl.Value.Range().Str(src))
	})

	t.Run("Empty program", func(t *testing.T) {
		program, err := Parse("  \n ")
		require.NoError(t, err)
		assert.Empty(t, program.Statements)
		assert.Equal(t, "Program()", program.String())
	})
}

func TestParseErrors(t *testing.T) {
	t.Run("Input that doesn't match the grammar", func(t *testing.T) {
		_, err := Parse("var x = ;")
		require.Error(t, err)

		var perr *peg.ParsingError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, peg.TrailingInput, perr.Kind)
		assert.Equal(t, 0, perr.Offset)

		var rerr *ReconstructionError
		assert.False(t, errors.As(err, &rerr))
	})

	t.Run("Input that matches but can't be built", func(t *testing.T) {
		_, err := Parse("var n = 99999999999999999999;")
		require.Error(t, err)

		var rerr *ReconstructionError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, "Primary", rerr.Level)
		assert.Equal(t, 8, rerr.Offset)
		assert.Equal(t, peg.Location{Line: 1, Column: 9, Cursor: 8}, rerr.Location)
		assert.Contains(t, rerr.Error(), "out of range")
	})

	t.Run("Empty expression", func(t *testing.T) {
		_, err := Build("Expression", peg.NewValueEmpty(0))
		var rerr *ReconstructionError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, "LogicalOr", rerr.Level)
		assert.Equal(t, "empty expression", rerr.Message)
	})

	t.Run("Missing right operand", func(t *testing.T) {
		value := peg.NewValueNodes([]peg.Value{
			peg.NewValueToken("1", peg.NewRange(0, 1)),
			peg.NewValueToken("+", peg.NewRange(1, 2)),
		}, peg.NewRange(0, 2))
		n, err := Build("Term", value)
		require.Error(t, err)
		assert.Nil(t, n)
		assert.Contains(t, err.Error(), `missing right operand of "+"`)
	})

	t.Run("Unrecognised token", func(t *testing.T) {
		_, err := Build("Primary", peg.NewValueToken("@", peg.NewRange(0, 1)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected token")
	})

	t.Run("Unknown rule", func(t *testing.T) {
		_, err := Build("Nope", peg.NewValueEmpty(0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown rule")
	})
}

func TestParseWithoutMemoization(t *testing.T) {
	src := "var x = (1 + 2) * f(3, [4])[0]; while (x > 0) { x = x - 1; }"

	cfg := peg.NewConfig()
	cfg.SetBool("parser.memoize", false)
	p, err := NewParser(cfg, nil)
	require.NoError(t, err)

	plain, err := p.Parse(src)
	require.NoError(t, err)
	memoized, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, memoized.String(), plain.String())
}

func TestGrammarIsValid(t *testing.T) {
	require.NoError(t, Grammar().Validate())
	assert.Equal(t, "Program", Grammar().Start().Name)

	cfg := peg.NewConfig()
	cfg.SetBool("grammar.validate", true)
	_, err := NewParser(cfg, nil)
	require.NoError(t, err)
}

func TestParseConcurrently(t *testing.T) {
	inputs := map[string]string{
		"1 + 2 * 3":   `BinaryOp("+", Number(1), BinaryOp("*", Number(2), Number(3)))`,
		"(1 + 2) * 3": `BinaryOp("*", BinaryOp("+", Number(1), Number(2)), Number(3))`,
		"a[b[0]]":     `ArrayAccess(Identifier(a), ArrayAccess(Identifier(b), Number(0)))`,
		"!done":       `UnaryOp("!", Identifier(done))`,
	}
	p, err := NewParser(peg.NewConfig(), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for input, expected := range inputs {
			wg.Add(1)
			go func(input, expected string) {
				defer wg.Done()
				expr, err := p.ParseExpression(input)
				if assert.NoError(t, err) {
					assert.Equal(t, expected, expr.String())
				}
			}(input, expected)
		}
	}
	wg.Wait()
}
