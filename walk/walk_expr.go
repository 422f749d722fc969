package walk

import (
	"fmt"

	"dusk/ast"
	"dusk/forge"
	"dusk/typing"
)

// getIDType returns the type bound to id in the current context, erroring if
// the identifier is unknown.
func (w *Walker) getIDType(id string, line int) typing.DataType {
	if !w.table.DoesSymbolExist(id) {
		w.semanticError(line,
			fmt.Sprintf("Symbol %q used in expression does not exist", id))
	}

	return w.table.GetValueType(id)
}

// ensureIDInCurrentContext errors if id is not visible, and, when allowed is
// non-empty, if its type is not one of the allowed types.
func (w *Walker) ensureIDInCurrentContext(id string, line int, allowed []typing.DataType) {
	if !w.table.DoesSymbolExist(id) {
		w.semanticError(line, fmt.Sprintf("Unknown identifier %q", id))
	}

	if len(allowed) == 0 {
		return
	}

	for _, dt := range allowed {
		if w.table.IsExistingSymbolOfType(id, dt) {
			return
		}
	}

	w.semanticError(line,
		fmt.Sprintf("Type of identifier %q (%s) not permitted in current operation",
			id, w.table.GetValueType(id).Repr()))
}

// determineExpressionType finds the type of an expression by descending the
// left spine to the first leaf.  Right subtrees are assumed to match; the
// uniformity rule is enforced separately by buildExpression.
func (w *Walker) determineExpressionType(node, traverse *ast.Ast, left bool, line int) typing.DataType {
	switch node.Kind {
	case ast.Value:
		return node.Type
	case ast.Identifier:
		return w.getIDType(node.Data, line)
	case ast.CallExpr:
		w.validateCall(node)
		return w.table.GetReturnTypeOfContext(node.FunctionName)
	}

	if left {
		// This should never happen, but we handle it just in case
		if node.Left == nil {
			return w.determineExpressionType(traverse, traverse, false, line)
		}

		// Go down the left side - we only need to traverse one side
		return w.determineExpressionType(node.Left, traverse, true, line)
	}

	// This REALLY shouldn't happen.
	if node.Right == nil {
		w.internalError("determineExpressionType",
			"Developer error : Failed to determine expression type")
	}

	return w.determineExpressionType(node.Right, traverse, false, line)
}

// validateCall checks a call against its callee's recorded signature and
// promotes UNKNOWN/REF_UNKNOWN argument types in place.
func (w *Walker) validateCall(call *ast.Ast) {
	// Disallow recursion until the VM has a frame discipline for it
	if call.FunctionName == w.currentFunction.Name {
		w.internalError("validateCall",
			fmt.Sprintf("Recursion is not yet supported. A recursive call was detected on line : %d of file : %s",
				w.pre.FetchUserLineNumber(call.LineNumber), w.pre.FileOf(call.LineNumber)))
	}

	if !w.table.DoesContextExist(call.FunctionName) {
		w.semanticError(call.LineNumber, "Unknown function name given for call")
	}

	calleeParams := w.table.GetContextParameters(call.FunctionName)

	if len(calleeParams) != len(call.Params) {
		w.semanticError(call.LineNumber,
			fmt.Sprintf("Mismatched number of parameters given for call to : %s", call.FunctionName),
			fmt.Sprintf("Expected %d, but given %d", len(calleeParams), len(call.Params)))
	}

	// Resolve placeholder argument types with the help of the symbol table
	for _, p := range call.Params {
		switch p.Type {
		case typing.Unknown:
			w.ensureIDInCurrentContext(p.Name, call.LineNumber, nil)

			promoted, ok := typing.VarVariantOf(w.table.GetValueType(p.Name))
			if !ok {
				w.internalError("validateCall",
					"Default accessed while attempting to set a parameter variable type")
			}
			p.Type = promoted
		case typing.RefUnknown:
			w.ensureIDInCurrentContext(p.Name, call.LineNumber, nil)

			promoted, ok := typing.RefVariantOf(w.table.GetValueType(p.Name))
			if !ok {
				w.internalError("validateCall",
					"Default accessed while attempting to set a parameter reference type")
			}
			p.Type = promoted
		}
	}

	// Base equality collapses VAR_/REF_/plain variants so a VAR_STANDARD_INTEGER
	// argument matches a STANDARD_INTEGER or REF_STANDARD_INTEGER parameter
	for i, p := range call.Params {
		if !typing.BaseEqual(p.Type, calleeParams[i].Type) {
			w.semanticError(call.LineNumber,
				fmt.Sprintf("Given parameter %q doesn't match expected data type for call to : %s", p.Name, call.FunctionName),
				fmt.Sprintf("Received type  : %s", p.Type.Repr()),
				fmt.Sprintf("Expected type  : %s", calleeParams[i].Type.Repr()))
		}
	}
}

// opItems maps operator AST nodes to their postfix instruction kinds.
var opItems = map[ast.NodeType]forge.ItemKind{
	ast.Add:    forge.ItemAdd,
	ast.Sub:    forge.ItemSub,
	ast.Mul:    forge.ItemMul,
	ast.Div:    forge.ItemDiv,
	ast.Mod:    forge.ItemMod,
	ast.Pow:    forge.ItemPow,
	ast.Lsh:    forge.ItemLsh,
	ast.Rsh:    forge.ItemRsh,
	ast.BwAnd:  forge.ItemBwAnd,
	ast.BwOr:   forge.ItemBwOr,
	ast.BwXor:  forge.ItemBwXor,
	ast.BwNot:  forge.ItemBwNot,
	ast.Negate: forge.ItemNegate,
	ast.And:    forge.ItemAnd,
	ast.Or:     forge.ItemOr,
	ast.Lt:     forge.ItemLt,
	ast.Lte:    forge.ItemLte,
	ast.Gt:     forge.ItemGt,
	ast.Gte:    forge.ItemGte,
	ast.Eq:     forge.ItemEq,
	ast.Ne:     forge.ItemNe,
}

// buildExpression walks an expression tree in post-order, appending postfix
// items to the scratch buffer while enforcing that every identifier and value
// leaf matches the expected type exactly.  Call leaves are validated against
// the callee's signature; the callee's return type is not compared with the
// expected type.  varName is the assignee (or a statement label) used in
// diagnostics.
func (w *Walker) buildExpression(varName string, node *ast.Ast, expected typing.DataType, line int) {
	switch node.Kind {
	case ast.Identifier:
		if !w.table.DoesSymbolExist(node.Data) {
			w.semanticError(line,
				fmt.Sprintf("Symbol %q used in expression does not exist", node.Data))
		}

		// The leaf type must match the expected type exactly; there is no
		// implicit widening
		if actual := w.table.GetValueType(node.Data); actual != expected {
			w.semanticError(line,
				fmt.Sprintf("Type of %q is %q, which is incompatible with type of %q which is type %q",
					node.Data, actual.Repr(), varName, expected.Repr()))
		}

		w.exprItems = append(w.exprItems, forge.ExpressionItem{Kind: forge.ItemVariable, Data: node.Data})

	case ast.Value:
		if node.Type != expected {
			w.semanticError(line,
				fmt.Sprintf("Type of %q is %q, which is incompatible with type of %q which is type %q",
					node.Data, node.Type.Repr(), varName, expected.Repr()))
		}

		w.exprItems = append(w.exprItems, forge.ExpressionItem{Kind: forge.ItemValue, Data: node.Data})

	case ast.CallExpr:
		w.validateCall(node)

		w.exprItems = append(w.exprItems, forge.ExpressionItem{
			Kind:   forge.ItemCall,
			Data:   node.FunctionName,
			Params: node.Params,
		})

	case ast.Root:
		w.internalError("buildExpression",
			"A ROOT node slipped into expression building. The setup of the walker should not have allowed this")

	default:
		op, ok := opItems[node.Kind]
		if !ok {
			w.internalError("buildExpression",
				"Default was accessed while walking the tree. This means a new AST node type was most likely added and not handled.")
		}

		w.buildExpression(varName, node.Left, expected, line)
		w.buildExpression(varName, node.Right, expected, line)
		w.exprItems = append(w.exprItems, forge.ExpressionItem{Kind: op})
	}
}
