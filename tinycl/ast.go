package tinycl

import (
	"fmt"
	"strconv"
	"strings"

	peg "github.com/clarete/tinypeg"
)

// Node is the interface implemented by every node of the TinyCL
// syntax tree
type Node interface {
	// Range returns where in the source text the node was found
	Range() peg.Range

	// String returns the constructor form of the node, like
	// `BinaryOp("+", Number(1), Number(2))`
	String() string
}

// Stmt is a node that can appear in a program or in a block
type Stmt interface {
	Node
	stmt()
}

// Expr is a node that produces a value
type Expr interface {
	Node
	expr()
}

type node struct{ rng peg.Range }

func (n node) Range() peg.Range { return n.rng }

// Node Type: Program

type Program struct {
	node
	Statements []Stmt
}

func (n *Program) String() string { return "Program(" + joinNodes(n.Statements) + ")" }

// Node Type: VariableDecl

type VariableDecl struct {
	node
	Name  string
	Value Expr
}

func (*VariableDecl) stmt() {}
func (n *VariableDecl) String() string {
	return fmt.Sprintf("VariableDecl(%q, %s)", n.Name, n.Value)
}

// Node Type: ConstantDecl

type ConstantDecl struct {
	node
	Name  string
	Value Expr
}

func (*ConstantDecl) stmt() {}
func (n *ConstantDecl) String() string {
	return fmt.Sprintf("ConstantDecl(%q, %s)", n.Name, n.Value)
}

// Node Type: Assignment

type Assignment struct {
	node
	Name  string
	Value Expr
}

func (*Assignment) stmt() {}
func (n *Assignment) String() string {
	return fmt.Sprintf("Assignment(%q, %s)", n.Name, n.Value)
}

// Node Type: If

// If is a conditional.  Else is nil when there's no `else` branch,
// and an `else if` chain is a Block holding a single If.
type If struct {
	node
	Cond Expr
	Then *Block
	Else *Block
}

func (*If) stmt() {}
func (n *If) String() string {
	if n.Else == nil {
		return fmt.Sprintf("If(%s, %s)", n.Cond, n.Then)
	}
	return fmt.Sprintf("If(%s, %s, %s)", n.Cond, n.Then, n.Else)
}

// Node Type: While

type While struct {
	node
	Cond Expr
	Body *Block
}

func (*While) stmt() {}
func (n *While) String() string { return fmt.Sprintf("While(%s, %s)", n.Cond, n.Body) }

// Node Type: Print

type Print struct {
	node
	Value Expr
}

func (*Print) stmt() {}
func (n *Print) String() string { return fmt.Sprintf("Print(%s)", n.Value) }

// Node Type: Return

// Return leaves the current function.  Value is nil for a bare
// `return;`
type Return struct {
	node
	Value Expr
}

func (*Return) stmt() {}
func (n *Return) String() string {
	if n.Value == nil {
		return "Return()"
	}
	return fmt.Sprintf("Return(%s)", n.Value)
}

// Node Type: Block

type Block struct {
	node
	Statements []Stmt
}

func (*Block) stmt() {}
func (n *Block) String() string { return "Block(" + joinNodes(n.Statements) + ")" }

// Node Type: Comment

type Comment struct {
	node
	Text string
}

func (*Comment) stmt() {}
func (n *Comment) String() string { return fmt.Sprintf("Comment(%q)", n.Text) }

// Node Type: FunctionDecl

type FunctionDecl struct {
	node
	Name   string
	Params []string
	Body   *Block
}

func (*FunctionDecl) stmt() {}
func (n *FunctionDecl) String() string {
	return fmt.Sprintf("FunctionDecl(%q, [%s], %s)", n.Name, strings.Join(n.Params, ", "), n.Body)
}

// Node Type: FunctionCallStmt

// FunctionCallStmt is a call whose result is discarded
type FunctionCallStmt struct {
	node
	Name string
	Args []Expr
}

func (*FunctionCallStmt) stmt() {}
func (n *FunctionCallStmt) String() string {
	return fmt.Sprintf("FunctionCallStmt(%q, [%s])", n.Name, joinNodes(n.Args))
}

// Node Type: BinaryOp

type BinaryOp struct {
	node
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryOp) expr() {}
func (n *BinaryOp) String() string {
	return fmt.Sprintf("BinaryOp(%q, %s, %s)", n.Op, n.Left, n.Right)
}

// Node Type: UnaryOp

type UnaryOp struct {
	node
	Op      string
	Operand Expr
}

func (*UnaryOp) expr() {}
func (n *UnaryOp) String() string { return fmt.Sprintf("UnaryOp(%q, %s)", n.Op, n.Operand) }

// Node Type: Number

type Number struct {
	node
	Value int64
}

func (*Number) expr() {}
func (n *Number) String() string { return "Number(" + strconv.FormatInt(n.Value, 10) + ")" }

// Node Type: String

type String struct {
	node
	Value string
}

func (*String) expr() {}
func (n *String) String() string { return fmt.Sprintf("String(%q)", n.Value) }

// Node Type: Character

type Character struct {
	node
	Value rune
}

func (*Character) expr() {}
func (n *Character) String() string { return fmt.Sprintf("Character(%q)", n.Value) }

// Node Type: Boolean

type Boolean struct {
	node
	Value bool
}

func (*Boolean) expr() {}
func (n *Boolean) String() string { return "Boolean(" + strconv.FormatBool(n.Value) + ")" }

// Node Type: Identifier

type Identifier struct {
	node
	Name string
}

func (*Identifier) expr() {}
func (n *Identifier) String() string { return "Identifier(" + n.Name + ")" }

// Node Type: FunctionCallExpr

type FunctionCallExpr struct {
	node
	Name string
	Args []Expr
}

func (*FunctionCallExpr) expr() {}
func (n *FunctionCallExpr) String() string {
	return fmt.Sprintf("FunctionCall(%q, [%s])", n.Name, joinNodes(n.Args))
}

// Node Type: ArrayLiteral

type ArrayLiteral struct {
	node
	Elements []Expr
}

func (*ArrayLiteral) expr() {}
func (n *ArrayLiteral) String() string { return "ArrayLiteral([" + joinNodes(n.Elements) + "])" }

// Node Type: ArrayAccess

type ArrayAccess struct {
	node
	Array Expr
	Index Expr
}

func (*ArrayAccess) expr() {}
func (n *ArrayAccess) String() string { return fmt.Sprintf("ArrayAccess(%s, %s)", n.Array, n.Index) }

func joinNodes[T Node](nodes []T) string {
	items := make([]string, len(nodes))
	for i, n := range nodes {
		items[i] = n.String()
	}
	return strings.Join(items, ", ")
}
