package tinycl

import (
	"strings"

	peg "github.com/clarete/tinypeg"
)

// Build turns `value`, the match tree produced by the grammar rule
// named `rule`, into a syntax tree node
func Build(rule string, value peg.Value) (Node, error) {
	switch rule {
	case "Program":
		return asNode(buildProgram(value))
	case "Statement":
		return asNode(buildStatement(value))
	case "Block":
		return asNode(buildBlock(value))
	case "FunctionDecl", "VariableDecl", "ConstantDecl",
		"IfStatement", "WhileStatement", "PrintStatement", "ReturnStatement",
		"AssignmentStatement", "FunctionCallStatement":
		return asNode(buildStatementAs(rule, value))
	case "Comment":
		return asNode(buildComment(value))
	case "Parameters", "Arguments":
		return nil, newReconstructionError(rule, value.Range().Start, "rule doesn't produce a node")
	}
	if level, ok := levelOfRule(rule); ok {
		return asNode(buildLevel(level, peg.Tokens(value)))
	}
	return nil, newReconstructionError(rule, value.Range().Start, "unknown rule")
}

// asNode keeps typed nil pointers from leaking out as non-nil nodes
func asNode[T Node](n T, err error) (Node, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}

func buildProgram(value peg.Value) (*Program, error) {
	stmts, err := buildStatements("Program", value)
	if err != nil {
		return nil, err
	}
	return &Program{node: node{rangeOf(value)}, Statements: stmts}, nil
}

// buildStatements builds the value of a `Statement*` expression
func buildStatements(level string, value peg.Value) ([]Stmt, error) {
	var items []peg.Value
	switch v := value.(type) {
	case *peg.ValueEmpty:
	case *peg.ValueNodes:
		items = v.Items
	default:
		return nil, newReconstructionError(level, value.Range().Start, "expected a list of statements")
	}
	stmts := make([]Stmt, 0, len(items))
	for _, item := range items {
		stmt, err := buildStatement(item)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// buildStatement builds the value of a Statement, whichever rule
// matched it
func buildStatement(value peg.Value) (Stmt, error) {
	if tok, ok := value.(*peg.ValueToken); ok && strings.HasPrefix(tok.Value, "#") {
		return &Comment{node: node{tok.Range()}, Text: tok.Value}, nil
	}
	seq, err := statementSeq("Statement", value)
	if err != nil {
		return nil, err
	}
	rule := statementRule(seq)
	if rule == "" {
		return nil, newReconstructionError("Statement", seq.Range().Start, "unrecognised statement %q", seq.Text())
	}
	return buildStatementAs(rule, seq)
}

func statementSeq(rule string, value peg.Value) (*peg.ValueNodes, error) {
	seq, ok := value.(*peg.ValueNodes)
	if !ok || len(seq.Items) == 0 {
		return nil, newReconstructionError(rule, value.Range().Start, "unrecognised statement %q", value.Text())
	}
	if _, ok := seq.Items[0].(*peg.ValueToken); !ok {
		return nil, newReconstructionError(rule, value.Range().Start, "statement doesn't start with a token")
	}
	return seq, nil
}

// statementRule tells which rule matched `seq` from its leading
// keyword and its shape.  Keywords aren't reserved, so `print = 1;`
// has to land on the assignment.
func statementRule(seq *peg.ValueNodes) string {
	first := seq.Items[0].(*peg.ValueToken).Value
	n := len(seq.Items)
	switch {
	case first == "func" && n == 6:
		return "FunctionDecl"
	case first == "var" && n == 5 && isToken(seq.Items[2], "="):
		return "VariableDecl"
	case first == "const" && n == 5 && isToken(seq.Items[2], "="):
		return "ConstantDecl"
	case first == "if" && n == 6 && isToken(seq.Items[1], "("):
		return "IfStatement"
	case first == "while" && n == 5 && !isToken(seq.Items[4], ";"):
		return "WhileStatement"
	case first == "print" && n == 5 && isToken(seq.Items[1], "("):
		return "PrintStatement"
	case first == "return" && n == 3:
		return "ReturnStatement"
	case first == "{" && n == 3:
		return "Block"
	case n == 4 && isToken(seq.Items[1], "="):
		return "AssignmentStatement"
	case n == 5 && isToken(seq.Items[1], "("):
		return "FunctionCallStatement"
	}
	return ""
}

// buildStatementAs builds the value matched by the statement rule
// named `rule`.  A `print(x);` matched by FunctionCallStatement is a
// call, even though Statement would read it as a print.
func buildStatementAs(rule string, value peg.Value) (Stmt, error) {
	if rule == "Block" {
		return buildBlock(value)
	}
	seq, err := statementSeq(rule, value)
	if err != nil {
		return nil, err
	}
	if !fitsStatementRule(rule, seq) {
		return nil, newReconstructionError(rule, seq.Range().Start, "unrecognised statement %q", seq.Text())
	}
	first := seq.Items[0].(*peg.ValueToken)

	switch rule {
	case "FunctionDecl":
		return buildFunctionDecl(seq)
	case "VariableDecl":
		name, expr, err := buildDeclaration(rule, seq)
		if err != nil {
			return nil, err
		}
		return &VariableDecl{node: node{rangeOf(seq)}, Name: name, Value: expr}, nil
	case "ConstantDecl":
		name, expr, err := buildDeclaration(rule, seq)
		if err != nil {
			return nil, err
		}
		return &ConstantDecl{node: node{rangeOf(seq)}, Name: name, Value: expr}, nil
	case "IfStatement":
		return buildIf(seq)
	case "WhileStatement":
		return buildWhile(seq)
	case "PrintStatement":
		expr, err := buildExpression(seq.Items[2])
		if err != nil {
			return nil, err
		}
		return &Print{node: node{rangeOf(seq)}, Value: expr}, nil
	case "ReturnStatement":
		ret := &Return{node: node{rangeOf(seq)}}
		if _, empty := seq.Items[1].(*peg.ValueEmpty); !empty {
			expr, err := buildExpression(seq.Items[1])
			if err != nil {
				return nil, err
			}
			ret.Value = expr
		}
		return ret, nil
	case "AssignmentStatement":
		expr, err := buildExpression(seq.Items[2])
		if err != nil {
			return nil, err
		}
		return &Assignment{node: node{rangeOf(seq)}, Name: first.Value, Value: expr}, nil
	case "FunctionCallStatement":
		args, err := buildArguments("FunctionCallStmt", seq.Items[2].Range().Start, peg.Tokens(seq.Items[2]))
		if err != nil {
			return nil, err
		}
		return &FunctionCallStmt{node: node{rangeOf(seq)}, Name: first.Value, Args: args}, nil
	}
	return nil, newReconstructionError(rule, seq.Range().Start, "unknown rule")
}

// fitsStatementRule checks the shape of `seq` against what `rule`
// produces.  Shapes overlap, so a call to `print` fits both
// PrintStatement and FunctionCallStatement.
func fitsStatementRule(rule string, seq *peg.ValueNodes) bool {
	n := len(seq.Items)
	switch rule {
	case "AssignmentStatement":
		return n == 4 && isToken(seq.Items[1], "=")
	case "FunctionCallStatement":
		return n == 5 && isToken(seq.Items[1], "(") && isToken(seq.Items[3], ")")
	}
	return statementRule(seq) == rule
}

func buildComment(value peg.Value) (*Comment, error) {
	tok, ok := value.(*peg.ValueToken)
	if !ok || !strings.HasPrefix(tok.Value, "#") {
		return nil, newReconstructionError("Comment", value.Range().Start, "expected a comment")
	}
	return &Comment{node: node{tok.Range()}, Text: tok.Value}, nil
}

// buildDeclaration reads `kw Identifier '=' Expression ';'`
func buildDeclaration(level string, seq *peg.ValueNodes) (string, Expr, error) {
	name, ok := seq.Items[1].(*peg.ValueToken)
	if !ok {
		return "", nil, newReconstructionError(level, seq.Range().Start, "expected a name")
	}
	expr, err := buildExpression(seq.Items[3])
	if err != nil {
		return "", nil, err
	}
	return name.Value, expr, nil
}

// buildFunctionDecl reads `func Identifier '(' Parameters? ')' Block`
func buildFunctionDecl(seq *peg.ValueNodes) (*FunctionDecl, error) {
	name, ok := seq.Items[1].(*peg.ValueToken)
	if !ok {
		return nil, newReconstructionError("FunctionDecl", seq.Range().Start, "expected a function name")
	}
	var params []string
	for _, tok := range peg.Tokens(seq.Items[3]) {
		if tok.Value != "," {
			params = append(params, tok.Value)
		}
	}
	body, err := buildBlock(seq.Items[5])
	if err != nil {
		return nil, err
	}
	return &FunctionDecl{
		node:   node{rangeOf(seq)},
		Name:   name.Value,
		Params: params,
		Body:   body,
	}, nil
}

// buildIf reads `if '(' Expression ')' Block (else (IfStatement / Block))?`
func buildIf(seq *peg.ValueNodes) (*If, error) {
	cond, err := buildExpression(seq.Items[2])
	if err != nil {
		return nil, err
	}
	then, err := buildBlock(seq.Items[4])
	if err != nil {
		return nil, err
	}
	stmt := &If{node: node{rangeOf(seq)}, Cond: cond, Then: then}

	alt, ok := seq.Items[5].(*peg.ValueNodes)
	if !ok {
		return stmt, nil
	}
	if len(alt.Items) != 2 || !isToken(alt.Items[0], "else") {
		return nil, newReconstructionError("IfStatement", alt.Range().Start, "malformed else branch")
	}
	branch, err := buildStatement(alt.Items[1])
	if err != nil {
		return nil, err
	}
	switch b := branch.(type) {
	case *Block:
		stmt.Else = b
	case *If:
		stmt.Else = &Block{node: node{b.Range()}, Statements: []Stmt{b}}
	default:
		return nil, newReconstructionError("IfStatement", alt.Range().Start, "else must be followed by a block or an if")
	}
	return stmt, nil
}

// buildWhile reads `while '(' Expression ')' Block`
func buildWhile(seq *peg.ValueNodes) (*While, error) {
	cond, err := buildExpression(seq.Items[2])
	if err != nil {
		return nil, err
	}
	body, err := buildBlock(seq.Items[4])
	if err != nil {
		return nil, err
	}
	return &While{node: node{rangeOf(seq)}, Cond: cond, Body: body}, nil
}

// buildBlock reads `'{' Statement* '}'`
func buildBlock(value peg.Value) (*Block, error) {
	seq, ok := value.(*peg.ValueNodes)
	if !ok || len(seq.Items) != 3 || !isToken(seq.Items[0], "{") || !isToken(seq.Items[2], "}") {
		return nil, newReconstructionError("Block", value.Range().Start, "expected a block")
	}
	stmts, err := buildStatements("Block", seq.Items[1])
	if err != nil {
		return nil, err
	}
	return &Block{node: node{rangeOf(seq)}, Statements: stmts}, nil
}

func buildExpression(value peg.Value) (Expr, error) {
	return buildLevel(LevelLogicalOr, peg.Tokens(value))
}

// rangeOf is the range from the first to the last token of `value`,
// leaving out the whitespace skipped after it
func rangeOf(value peg.Value) peg.Range {
	toks := peg.Tokens(value)
	if len(toks) == 0 {
		return value.Range()
	}
	return spanOf(toks)
}

func isToken(value peg.Value, text string) bool {
	tok, ok := value.(*peg.ValueToken)
	return ok && tok.Value == text
}
