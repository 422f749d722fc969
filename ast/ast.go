package ast

import (
	"dusk/forge"
	"dusk/typing"
)

// NodeType enumerates the expression node kinds produced by the parser.
type NodeType int

const (
	Root NodeType = iota
	Value
	Identifier
	CallExpr

	// binary operators
	Add
	Sub
	Mul
	Div
	Mod
	Pow
	Lsh
	Rsh
	BwAnd
	BwOr
	BwXor
	And
	Or
	Lt
	Lte
	Gt
	Gte
	Eq
	Ne

	// unary operators -- the parser sets both children (the operand twice)
	// so the walker can treat every operator node uniformly
	BwNot
	Negate
)

// Ast is one expression tree node.  Data holds the literal text for Value
// nodes, the symbol name for Identifier nodes, the callee name for CallExpr
// nodes, and the operator lexeme otherwise.  FunctionName and Params are
// populated for CallExpr nodes only.
type Ast struct {
	Kind NodeType
	Type typing.DataType
	Data string

	Left  *Ast
	Right *Ast

	FunctionName string
	Params       []*forge.Variable

	LineNumber int
}

// NewAst creates an expression node.
func NewAst(kind NodeType, dt typing.DataType, data string, left, right *Ast) *Ast {
	return &Ast{Kind: kind, Type: dt, Data: data, Left: left, Right: right}
}

// NewCallAst creates a CallExpr node for the named function.
func NewCallAst(name string, params []*forge.Variable) *Ast {
	return &Ast{Kind: CallExpr, Type: typing.Undefined, Data: name, FunctionName: name, Params: params}
}
