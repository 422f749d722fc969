package forge

import "dusk/typing"

// ItemKind discriminates the items of a postfix expression sequence.
type ItemKind int

const (
	// operand items
	ItemValue ItemKind = iota
	ItemVariable
	ItemCall

	// pure operators
	ItemAdd
	ItemSub
	ItemMul
	ItemDiv
	ItemMod
	ItemPow
	ItemLsh
	ItemRsh
	ItemBwAnd
	ItemBwOr
	ItemBwXor
	ItemBwNot
	ItemNegate
	ItemAnd
	ItemOr
	ItemLt
	ItemLte
	ItemGt
	ItemGte
	ItemEq
	ItemNe
)

var itemMnemonics = map[ItemKind]string{
	ItemAdd:    "add",
	ItemSub:    "sub",
	ItemMul:    "mul",
	ItemDiv:    "div",
	ItemMod:    "mod",
	ItemPow:    "pow",
	ItemLsh:    "lsh",
	ItemRsh:    "rsh",
	ItemBwAnd:  "band",
	ItemBwOr:   "bor",
	ItemBwXor:  "bxor",
	ItemBwNot:  "bnot",
	ItemNegate: "neg",
	ItemAnd:    "and",
	ItemOr:     "or",
	ItemLt:     "lt",
	ItemLte:    "lte",
	ItemGt:     "gt",
	ItemGte:    "gte",
	ItemEq:     "eq",
	ItemNe:     "ne",
}

// Mnemonic returns the VM mnemonic for an operator item, or "" for operands.
func (ik ItemKind) Mnemonic() string {
	return itemMnemonics[ik]
}

// ExpressionItem is one element of a postfix expression sequence.  Data holds
// the literal text for ItemValue, the symbol name for ItemVariable, and the
// callee name for ItemCall.  Params is populated for ItemCall only, holding
// the already-type-resolved argument descriptors.
type ExpressionItem struct {
	Kind   ItemKind
	Data   string
	Params []*Variable
}

// Expression pairs a result type with the postfix items that compute it.
// Every variable and value item in a well-formed expression has the result
// type; call items are not compared against it.
type Expression struct {
	Type  typing.DataType
	Items []ExpressionItem
}

// NewExpression creates an expression from a result type and its items.  The
// items slice is copied so the analyzer can keep reusing its scratch buffer.
func NewExpression(dt typing.DataType, items []ExpressionItem) *Expression {
	owned := make([]ExpressionItem, len(items))
	copy(owned, items)
	return &Expression{Type: dt, Items: owned}
}
