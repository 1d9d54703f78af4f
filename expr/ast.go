package expr

import (
	"fmt"
	"strings"
)

// Node is an AST node of the expression language.
type Node interface {
	String() string
}

// BoolLit is a boolean literal (true/false).
type BoolLit struct {
	Value bool
}

func (n *BoolLit) String() string {
	return fmt.Sprintf("%t", n.Value)
}

// NumberLit is an integer literal. Value is int64 for literals that fit,
// *uint256.Int otherwise.
type NumberLit struct {
	Value any
}

func (n *NumberLit) String() string {
	return fmt.Sprintf("%v", n.Value)
}

// StringLit is a double-quoted string literal.
type StringLit struct {
	Value string
}

func (n *StringLit) String() string {
	return fmt.Sprintf("%q", n.Value)
}

// Identifier is a bare name resolved through the scope chain.
type Identifier struct {
	Name string
}

func (n *Identifier) String() string {
	return n.Name
}

// UnaryOp is a prefix operator application (! or -).
type UnaryOp struct {
	Op      string
	Operand Node
}

func (n *UnaryOp) String() string {
	return fmt.Sprintf("(%s%s)", n.Op, n.Operand)
}

// BinaryOp is an infix operator application.
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

func (n *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

// FieldExpr is a field access: object.field.
type FieldExpr struct {
	Object Node
	Field  string
}

func (n *FieldExpr) String() string {
	return fmt.Sprintf("%s.%s", n.Object, n.Field)
}

// IndexExpr is an index access: object[index].
type IndexExpr struct {
	Object Node
	Index  Node
}

func (n *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", n.Object, n.Index)
}

// CallExpr is a function call. The callee is resolved through the scope
// chain and must be bound to a Func.
type CallExpr struct {
	Func string
	Args []Node
}

func (n *CallExpr) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Func, strings.Join(args, ", "))
}

// Assign is one assignment statement of an update procedure.
// Target must be a FieldExpr or IndexExpr naming a mutable field.
type Assign struct {
	Target Node
	Value  Node
}

func (n *Assign) String() string {
	return fmt.Sprintf("%s = %s", n.Target, n.Value)
}

// Block is a sequence of assignment statements executed in order.
type Block struct {
	Stmts []*Assign
}

func (n *Block) String() string {
	parts := make([]string, len(n.Stmts))
	for i, s := range n.Stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}
