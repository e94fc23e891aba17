package tinycl

import (
	peg "github.com/clarete/tinypeg"
)

// grammar is built once and shared by every parser.  Grammars are
// read only after construction, so that's safe to do.
var grammar = newGrammar()

// Grammar returns the grammar of the TinyCL language
func Grammar() *peg.Grammar {
	return grammar
}

// keyword matches `word` only when it isn't the prefix of a longer
// identifier, so `variable` isn't read as `var iable`
func keyword(word string) peg.Expression {
	return peg.CharClass(word + `\b`)
}

func newGrammar() *peg.Grammar {
	var (
		lit = peg.Literal
		ref = peg.Reference
		seq = peg.Sequence
		alt = peg.Choice
		opt = peg.Optional
		many = peg.ZeroOrMore
	)

	// binary builds the rule shape shared by all binary operator
	// tiers: `Next (op Next)*`
	binary := func(next string, ops ...string) peg.Expression {
		choices := make([]peg.Expression, len(ops))
		for i, op := range ops {
			choices[i] = lit(op)
		}
		var operator peg.Expression = choices[0]
		if len(choices) > 1 {
			operator = alt(choices...)
		}
		return seq(ref(next), many(seq(operator, ref(next))))
	}

	return peg.NewGrammar("TinyCL",
		// Program structure
		peg.NewRule("Program", many(ref("Statement"))),

		// Statements
		peg.NewRule("Statement", alt(
			ref("Comment"),
			ref("FunctionDecl"),
			ref("VariableDecl"),
			ref("ConstantDecl"),
			ref("IfStatement"),
			ref("WhileStatement"),
			ref("PrintStatement"),
			ref("ReturnStatement"),
			ref("AssignmentStatement"),
			ref("FunctionCallStatement"),
			ref("Block"),
		)),

		peg.NewRule("Comment", peg.CharClass(`#[^\n]*`)),

		peg.NewRule("FunctionDecl", seq(
			keyword("func"),
			ref("Identifier"),
			lit("("),
			opt(ref("Parameters")),
			lit(")"),
			ref("Block"),
		)),

		peg.NewRule("Parameters", seq(
			ref("Identifier"),
			many(seq(lit(","), ref("Identifier"))),
		)),

		peg.NewRule("VariableDecl", seq(
			keyword("var"),
			ref("Identifier"),
			lit("="),
			ref("Expression"),
			lit(";"),
		)),

		peg.NewRule("ConstantDecl", seq(
			keyword("const"),
			ref("Identifier"),
			lit("="),
			ref("Expression"),
			lit(";"),
		)),

		peg.NewRule("IfStatement", seq(
			keyword("if"),
			lit("("),
			ref("Expression"),
			lit(")"),
			ref("Block"),
			opt(seq(
				keyword("else"),
				alt(ref("IfStatement"), ref("Block")),
			)),
		)),

		peg.NewRule("WhileStatement", seq(
			keyword("while"),
			lit("("),
			ref("Expression"),
			lit(")"),
			ref("Block"),
		)),

		peg.NewRule("PrintStatement", seq(
			keyword("print"),
			lit("("),
			ref("Expression"),
			lit(")"),
			lit(";"),
		)),

		peg.NewRule("ReturnStatement", seq(
			keyword("return"),
			opt(ref("Expression")),
			lit(";"),
		)),

		peg.NewRule("AssignmentStatement", seq(
			ref("Identifier"),
			lit("="),
			ref("Expression"),
			lit(";"),
		)),

		peg.NewRule("FunctionCallStatement", seq(
			ref("Identifier"),
			lit("("),
			opt(ref("Arguments")),
			lit(")"),
			lit(";"),
		)),

		peg.NewRule("Arguments", seq(
			ref("Expression"),
			many(seq(lit(","), ref("Expression"))),
		)),

		peg.NewRule("Block", seq(
			lit("{"),
			many(ref("Statement")),
			lit("}"),
		)),

		// Expressions, from the lowest to the highest precedence
		peg.NewRule("Expression", ref("LogicalOr")),
		peg.NewRule("LogicalOr", binary("LogicalAnd", "||")),
		peg.NewRule("LogicalAnd", binary("Equality", "&&")),
		peg.NewRule("Equality", binary("Comparison", "!=", "==")),
		peg.NewRule("Comparison", binary("Term", "<=", ">=", "<", ">")),
		peg.NewRule("Term", binary("Factor", "+", "-")),
		peg.NewRule("Factor", binary("Unary", "*", "/", "%")),

		peg.NewRule("Unary", alt(
			seq(alt(lit("!"), lit("-")), ref("Unary")),
			ref("Postfix"),
		)),

		peg.NewRule("Postfix", seq(
			ref("Primary"),
			many(seq(lit("["), ref("Expression"), lit("]"))),
		)),

		peg.NewRule("Primary", alt(
			seq(lit("("), ref("Expression"), lit(")")),
			seq(ref("Identifier"), lit("("), opt(ref("Arguments")), lit(")")),
			seq(lit("["), opt(ref("Arguments")), lit("]")),
			ref("Boolean"),
			ref("Identifier"),
			ref("Number"),
			ref("String"),
			ref("Character"),
		)),

		// Terminals
		peg.NewRule("Boolean", peg.CharClass(`(?:true|false)\b`)),
		peg.NewRule("Number", peg.CharClass(`[0-9]+`)),
		peg.NewRule("String", peg.CharClass(`"(?:[^"\\]|\\.)*"`)),
		peg.NewRule("Character", peg.CharClass(`'(?:[^'\\]|\\.)'`)),
		peg.NewRule("Identifier", peg.CharClass(`[a-zA-Z_][a-zA-Z0-9_]*`)),
	)
}
