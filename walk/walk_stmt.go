package walk

import (
	"fmt"

	"dusk/ast"
	"dusk/forge"
	"dusk/typing"
)

// walkFunction analyzes one source function and hands its completed IR to
// the forge.
func (w *Walker) walkFunction(fn *ast.Function) {
	// Ensure the function name doesn't already name a context
	if w.table.DoesContextExist(fn.Name) {
		w.semanticError(fn.Line(),
			fmt.Sprintf("Duplicate context name (%s) detected", fn.Name),
			"Rename function to be unique")
	}

	if err := w.table.NewContext(fn.Name); err != nil {
		w.internalError("walkFunction", err.Error())
	}

	if fn.Name == "main" {
		w.programWatcher.hasMain = true
	}

	// Ensure parameters aren't too many in number
	if len(fn.Params) > w.maxParams {
		w.semanticError(fn.Line(),
			fmt.Sprintf("Function parameters exceed number permitted by system (%d)", w.maxParams),
			"Reduce the number of parameters for the given function")
	}

	w.table.AddParametersToCurrentContext(fn.Params)
	w.table.AddReturnTypeToCurrentContext(fn.ReturnType.DataType)

	w.functionWatcher.hasReturn = false

	irFunc := forge.NewFunction(fn.Name, fn.ReturnType.DataType, fn.Params)
	w.pushAggregator(irFunc)
	w.currentFunction = fn

	for _, el := range fn.Elements {
		w.walkStatement(el)
	}

	// Clear the symbols of the finished function so its locals can't be
	// reached externally; the context itself survives for call resolution
	w.table.ClearExistingContext(fn.Name)

	// Check that the function has been explicitly returned
	if !w.functionWatcher.hasReturn {
		w.semanticError(fn.Line(),
			"Given function does not have a matching return. All functions must be explicitly returned")
	}

	w.forge.AddReadyFunction(irFunc)

	w.currentFunction = nil
	w.popAggregator()
	w.table.LeaveContext()

	// Reset the memory manager so the next function allocates a fresh frame
	w.forge.ResetMemory()
}

// walkStatement dispatches one statement to its handler.  A statement kind
// missing from this switch is a compiler defect, not a user error.
func (w *Walker) walkStatement(stmt ast.Statement) {
	switch v := stmt.(type) {
	case *ast.Assignment:
		w.walkAssignment(v)
	case *ast.Reassignment:
		w.walkReassignment(v)
	case *ast.CallStmt:
		w.walkCallStmt(v)
	case *ast.Return:
		w.walkReturn(v)
	case *ast.If:
		w.walkIf(v)
	case *ast.While:
		w.walkWhile(v)
	case *ast.For:
		w.walkFor(v)
	case *ast.NamedLoop:
		w.walkNamedLoop(v)
	case *ast.Continue:
		w.walkContinue(v)
	case *ast.Break:
		w.walkBreak(v)
	default:
		w.internalError("walkStatement",
			fmt.Sprintf("Unhandled statement type %T: a new statement kind was most likely added and not handled", stmt))
	}
}

// -----------------------------------------------------------------------------

func (w *Walker) walkAssignment(stmt *ast.Assignment) {
	name := stmt.Tree.Left.Data

	if w.table.DoesSymbolExist(name) {
		w.semanticError(stmt.Line(),
			fmt.Sprintf("Symbol %q used in assignment is not unique", name))
	}

	w.exprItems = w.exprItems[:0]
	w.buildExpression(name, stmt.Tree.Right, stmt.TypeInfo.DataType, stmt.Line())

	w.currentAggregator.AddInstruction(&forge.Assignment{
		Var:  forge.NewVariable(name, stmt.TypeInfo.DataType),
		Expr: forge.NewExpression(stmt.TypeInfo.DataType, w.exprItems),
	})

	if err := w.table.AddSymbol(name, stmt.TypeInfo.DataType, stmt.Immutable); err != nil {
		w.internalError("walkAssignment", err.Error())
	}
}

func (w *Walker) walkReassignment(stmt *ast.Reassignment) {
	name := stmt.Tree.Left.Data

	// Ensure the symbol to be reassigned has already been defined
	if !w.table.DoesSymbolExist(name) {
		w.semanticError(stmt.Line(),
			fmt.Sprintf("Symbol %q for reassignment has not yet been defined", name))
	}

	if w.table.IsImmutable(name) {
		w.semanticError(stmt.Line(),
			fmt.Sprintf("Symbol %q is immutable and cannot be reassigned", name))
	}

	lhsType := w.table.GetValueType(name)

	w.exprItems = w.exprItems[:0]
	w.buildExpression(name, stmt.Tree.Right, lhsType, stmt.Line())

	w.currentAggregator.AddInstruction(&forge.Reassignment{
		Var:  forge.NewVariable(name, lhsType),
		Expr: forge.NewExpression(lhsType, w.exprItems),
	})
}

func (w *Walker) walkCallStmt(stmt *ast.CallStmt) {
	// Validate the call and resolve any UNKNOWN argument types in place
	w.validateCall(stmt.Call)

	w.currentAggregator.AddInstruction(&forge.Call{
		Name:   stmt.Call.FunctionName,
		Params: stmt.Call.Params,
	})
}

func (w *Walker) walkReturn(stmt *ast.Return) {
	// Only a return in the function's own scope, outside any nested block,
	// satisfies the explicit return requirement
	if w.table.CurrentContextName() == w.currentFunction.Name && w.table.ScopeDepth() == 1 {
		w.functionWatcher.hasReturn = true
	}

	if stmt.Expr == nil {
		w.currentAggregator.AddInstruction(&forge.Return{})
		return
	}

	returnType := w.currentFunction.ReturnType.DataType

	w.exprItems = w.exprItems[:0]
	w.buildExpression("Return Expression", stmt.Expr, returnType, stmt.Line())

	w.currentAggregator.AddInstruction(&forge.Return{
		Expr: forge.NewExpression(returnType, w.exprItems),
	})
}

// -----------------------------------------------------------------------------

func (w *Walker) walkIf(stmt *ast.If) {
	w.currentAggregator.AddInstruction(w.buildIfLink(stmt))
}

// buildIfLink builds one link of an if/elif chain and recurses into its
// trail, producing a linear If -> Elif -> (Elif|...) sequence.  An else has
// already been rewritten to elif(1) by the parser.
func (w *Walker) buildIfLink(stmt *ast.If) *forge.If {
	condType := w.determineExpressionType(stmt.Cond, stmt.Cond, true, stmt.Line())

	w.exprItems = w.exprItems[:0]
	if stmt.Kind == ast.IfBranch {
		w.buildExpression("If Statement", stmt.Cond, condType, stmt.Line())
	} else {
		w.buildExpression("Else If Statement", stmt.Cond, condType, stmt.Line())
	}

	kind := forge.KindIf
	if stmt.Kind == ast.ElifBranch {
		kind = forge.KindElif
	}

	irIf := &forge.If{
		Kind: kind,
		Cond: forge.NewExpression(condType, w.exprItems),
	}

	w.pushAggregator(irIf)
	w.table.PushScope()

	for _, el := range stmt.Elements {
		w.walkStatement(el)
	}

	w.table.PopScope()
	w.popAggregator()

	if stmt.Trail != nil {
		irIf.Trail = w.buildIfLink(stmt.Trail)
	}

	return irIf
}

func (w *Walker) walkWhile(stmt *ast.While) {
	condType := w.determineExpressionType(stmt.Cond, stmt.Cond, true, stmt.Line())

	w.exprItems = w.exprItems[:0]
	w.buildExpression("While Loop", stmt.Cond, condType, stmt.Line())

	loop := &forge.While{Cond: forge.NewExpression(condType, w.exprItems)}

	// A bare while accepts continue but is not a break target
	prevContinuable := w.continuable
	w.continuable = loop

	w.pushAggregator(loop)
	w.table.PushScope()

	for _, el := range stmt.Elements {
		w.walkStatement(el)
	}

	w.table.PopScope()
	w.popAggregator()

	w.currentAggregator.AddInstruction(loop)
	w.continuable = prevContinuable
}

func (w *Walker) walkFor(stmt *ast.For) {
	// The loop variable lives in the enclosing scope, before the loop
	w.walkAssignment(stmt.Init)

	condType := w.determineExpressionType(stmt.Cond, stmt.Cond, true, stmt.Line())

	w.exprItems = w.exprItems[:0]
	w.buildExpression("For Loop", stmt.Cond, condType, stmt.Line())

	loop := &forge.For{Cond: forge.NewExpression(condType, w.exprItems)}

	prevContinuable := w.continuable
	w.continuable = loop

	w.pushAggregator(loop)
	w.table.PushScope()

	for _, el := range stmt.Elements {
		w.walkStatement(el)
	}

	// The step reassignment becomes the last body instruction
	w.walkReassignment(stmt.Step)
	if step, ok := loop.Body[len(loop.Body)-1].(*forge.Reassignment); ok {
		loop.Step = step
	}

	w.table.PopScope()
	w.popAggregator()

	w.currentAggregator.AddInstruction(loop)
	w.continuable = prevContinuable
}

// walkNamedLoop rewrites `loop name { ... }` into a synthesized declaration
// `name = 1` followed by a while loop whose condition is the name itself.
func (w *Walker) walkNamedLoop(stmt *ast.NamedLoop) {
	counter := ast.NewAst(ast.Root, typing.Undefined, "=",
		ast.NewAst(ast.Identifier, typing.Unknown, stmt.Name, nil, nil),
		ast.NewAst(ast.Value, typing.StandardInteger, "1", nil, nil))
	counter.LineNumber = stmt.Line()

	declare := &ast.Assignment{
		StmtBase: ast.StmtBase{LineNumber: stmt.Line()},
		Tree:     counter,
		TypeInfo: &ast.TypeInfo{DataType: typing.StandardInteger, Raw: "int"},
	}

	// Declaring the counter reserves storage for the loop name
	w.walkAssignment(declare)

	w.exprItems = w.exprItems[:0]
	w.buildExpression("Named Loop",
		ast.NewAst(ast.Identifier, typing.Unknown, stmt.Name, nil, nil),
		typing.StandardInteger, stmt.Line())

	loop := &forge.While{Cond: forge.NewExpression(typing.StandardInteger, w.exprItems)}

	// Named loops are the only break targets
	prevContinuable := w.continuable
	prevBreakable := w.breakable
	w.continuable = loop
	w.breakable = loop

	w.pushAggregator(loop)
	w.table.PushScope()

	for _, el := range stmt.Elements {
		w.walkStatement(el)
	}

	w.table.PopScope()
	w.popAggregator()

	w.currentAggregator.AddInstruction(loop)

	w.continuable = prevContinuable
	w.breakable = prevBreakable
}

func (w *Walker) walkContinue(stmt *ast.Continue) {
	if w.continuable == nil {
		w.internalError("walkContinue",
			"A continue statement came in and the continuable pointer was not set",
			"This could either be a grammar error, or an implementation error in the analyzer",
			"Either way this is a developer error, not a user error")
	}

	w.continuable.AddContinueStatement()
}

func (w *Walker) walkBreak(stmt *ast.Break) {
	if w.breakable == nil {
		w.internalError("walkBreak",
			"A break statement came in and the breakable pointer was not set",
			"This could either be a grammar error, or an implementation error in the analyzer",
			"Either way this is a developer error, not a user error")
	}

	w.breakable.AddBreak(stmt.Name)
}
