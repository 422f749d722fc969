package walk_test

import (
	"strings"
	"testing"

	"dusk/common"
	"dusk/forge"
	"dusk/preproc"
	"dusk/report"
	"dusk/syntax"
	"dusk/typing"
	"dusk/walk"

	"github.com/go-test/deep"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func analyze(t *testing.T, src string) (*forge.Forge, bool) {
	t.Helper()
	return analyzeWithMaxParams(t, src, common.DefaultMaxParams)
}

func analyzeWithMaxParams(t *testing.T, src string, maxParams int) (*forge.Forge, bool) {
	t.Helper()

	pre := preproc.New()
	flat, err := pre.ProcessSource("test.dk", src)
	if err != nil {
		t.Fatalf("preprocessor error: %v", err)
	}

	tokens, err := syntax.NewScanner(flat).Tokenize()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}

	fns, err := syntax.NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	fg := forge.NewForge()
	ok := walk.NewWalker(fg, pre, maxParams).WalkUnit(fns)
	return fg, ok
}

func expectClean(t *testing.T, fg *forge.Forge, ok bool) {
	t.Helper()

	if !ok {
		t.Fatalf("expected analysis to succeed; reports: %v", fg.Reporter().Reports())
	}
}

// expectOneError asserts that analysis failed with exactly one semantic
// error whose messages mention the given fragment.
func expectOneError(t *testing.T, fg *forge.Forge, ok bool, fragment string) {
	t.Helper()

	if ok {
		t.Fatal("expected analysis to fail")
	}

	reports := fg.Reporter().Reports()
	if len(reports) != 1 {
		t.Fatalf("expected exactly 1 report, got %d: %v", len(reports), reports)
	}

	sr, isSemantic := reports[0].(*report.SemanticReport)
	if !isSemantic {
		t.Fatalf("expected a semantic report, got %T", reports[0])
	}

	if !messagesContain(sr.Messages, fragment) {
		t.Errorf("expected messages mentioning %q, got %v", fragment, sr.Messages)
	}
}

func expectInternal(t *testing.T, fg *forge.Forge, ok bool, fragment string) {
	t.Helper()

	if ok {
		t.Fatal("expected analysis to fail")
	}

	if !fg.Reporter().HasInternal() {
		t.Fatalf("expected an internal report, got %v", fg.Reporter().Reports())
	}

	for _, rep := range fg.Reporter().Reports() {
		if ir, isInternal := rep.(*report.InternalReport); isInternal {
			if messagesContain(ir.Messages, fragment) {
				return
			}
		}
	}

	t.Errorf("no internal report mentions %q", fragment)
}

func messagesContain(messages []string, fragment string) bool {
	for _, msg := range messages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}

func valueExpr(dt typing.DataType, literal string) *forge.Expression {
	return &forge.Expression{
		Type:  dt,
		Items: []forge.ExpressionItem{{Kind: forge.ItemValue, Data: literal}},
	}
}

// ---------------------------------------------------------------------------
// End-to-end scenarios
// ---------------------------------------------------------------------------

func TestMinimalMain(t *testing.T) {
	fg, ok := analyze(t, `def main() -> int { return 0 }`)
	expectClean(t, fg, ok)

	fns := fg.ReadyFunctions()
	if len(fns) != 1 {
		t.Fatalf("expected 1 ready function, got %d", len(fns))
	}

	if fns[0].Name != "main" {
		t.Errorf("expected function name main, got %q", fns[0].Name)
	}

	want := []forge.Instruction{
		&forge.Return{Expr: valueExpr(typing.StandardInteger, "0")},
	}

	if diff := deep.Equal(fns[0].Body, want); diff != nil {
		t.Errorf("body mismatch: %v", diff)
	}
}

func TestDuplicateSymbol(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	int x = 1
	int x = 2
	return 0
}`)

	expectOneError(t, fg, ok, "not unique")
}

func TestCallArityMismatch(t *testing.T) {
	fg, ok := analyze(t, `
def f(a: int) -> int {
	return a
}

def main() -> int {
	f()
	return 0
}`)

	expectOneError(t, fg, ok, "Expected 1, but given 0")
}

func TestMixedTypeExpression(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	int x = 1 + 2.0
	return 0
}`)

	expectOneError(t, fg, ok, `"2.0"`)
}

func TestNamedLoopLowering(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	loop L {
		break L
	}
	return 0
}`)
	expectClean(t, fg, ok)

	body := fg.ReadyFunctions()[0].Body
	if len(body) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(body))
	}

	wantDecl := &forge.Assignment{
		Var:  forge.NewVariable("L", typing.StandardInteger),
		Expr: valueExpr(typing.StandardInteger, "1"),
	}
	if diff := deep.Equal(body[0], wantDecl); diff != nil {
		t.Errorf("loop counter mismatch: %v", diff)
	}

	wantLoop := &forge.While{
		Cond: &forge.Expression{
			Type:  typing.StandardInteger,
			Items: []forge.ExpressionItem{{Kind: forge.ItemVariable, Data: "L"}},
		},
		Body:       []forge.Instruction{&forge.Break{Name: "L"}},
		BreakSites: []int{0},
	}
	if diff := deep.Equal(body[1], wantLoop); diff != nil {
		t.Errorf("lowered loop mismatch: %v", diff)
	}
}

func TestSelfCallRejected(t *testing.T) {
	fg, ok := analyze(t, `
def f() -> int {
	f()
	return 0
}

def main() -> int {
	return 0
}`)

	expectInternal(t, fg, ok, "Recursion is not yet supported")
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		fragment string
	}{
		{
			name: "duplicate context",
			src: `
def f() -> int { return 0 }
def f() -> int { return 0 }
def main() -> int { return 0 }`,
			fragment: "Duplicate context name (f)",
		},
		{
			name:     "missing return",
			src:      `def main() -> int { int x = 1 }`,
			fragment: "does not have a matching return",
		},
		{
			name:     "no main",
			src:      `def f() -> int { return 0 }`,
			fragment: `"main"`,
		},
		{
			name:     "reassignment of undefined symbol",
			src:      `def main() -> int { y = 2 return 0 }`,
			fragment: "has not yet been defined",
		},
		{
			name: "reassignment of immutable symbol",
			src: `
def main() -> int {
	const int x = 1
	x = 2
	return 0
}`,
			fragment: "immutable",
		},
		{
			name:     "unknown callee",
			src:      `def main() -> int { g() return 0 }`,
			fragment: "Unknown function name",
		},
		{
			name: "call type mismatch",
			src: `
def f(a: int) -> int { return a }
def main() -> int {
	f("hello")
	return 0
}`,
			fragment: "doesn't match expected data type",
		},
		{
			name: "undefined symbol in expression",
			src: `
def main() -> int {
	int x = q + 1
	return 0
}`,
			fragment: "does not exist",
		},
		{
			name: "return expression type mismatch",
			src: `
def main() -> int {
	return 1.5
}`,
			fragment: `"1.5"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fg, ok := analyze(t, tt.src)
			expectOneError(t, fg, ok, tt.fragment)
		})
	}
}

func TestParameterOverflow(t *testing.T) {
	fg, ok := analyzeWithMaxParams(t, `
def f(a: int, b: int, c: int) -> int {
	return a
}

def main() -> int {
	return 0
}`, 2)

	expectOneError(t, fg, ok, "exceed number permitted by system (2)")
}

func TestBreakOutsideNamedLoop(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	while (1) {
		break L
	}
	return 0
}`)

	expectInternal(t, fg, ok, "breakable pointer was not set")
}

// ---------------------------------------------------------------------------
// IR construction
// ---------------------------------------------------------------------------

func TestFunctionsEmittedInSourceOrder(t *testing.T) {
	fg, ok := analyze(t, `
def first() -> int { return 1 }
def second() -> double { return 2.5 }
def main() -> int { return 0 }`)
	expectClean(t, fg, ok)

	fns := fg.ReadyFunctions()
	if len(fns) != 3 {
		t.Fatalf("expected 3 ready functions, got %d", len(fns))
	}

	wantNames := []string{"first", "second", "main"}
	for i, fn := range fns {
		if fn.Name != wantNames[i] {
			t.Errorf("function %d: expected %q, got %q", i, wantNames[i], fn.Name)
		}

		if len(fn.Body) == 0 {
			t.Fatalf("function %q has an empty body", fn.Name)
		}

		if _, isReturn := fn.Body[len(fn.Body)-1].(*forge.Return); !isReturn {
			t.Errorf("function %q does not terminate in a return", fn.Name)
		}
	}
}

func TestExpressionPostfixOrder(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	int x = 1 + 2 * 3
	return x
}`)
	expectClean(t, fg, ok)

	assign := fg.ReadyFunctions()[0].Body[0].(*forge.Assignment)

	want := []forge.ExpressionItem{
		{Kind: forge.ItemValue, Data: "1"},
		{Kind: forge.ItemValue, Data: "2"},
		{Kind: forge.ItemValue, Data: "3"},
		{Kind: forge.ItemMul},
		{Kind: forge.ItemAdd},
	}

	if diff := deep.Equal(assign.Expr.Items, want); diff != nil {
		t.Errorf("postfix mismatch: %v", diff)
	}

	if assign.Expr.Type != typing.StandardInteger {
		t.Errorf("expected int expression, got %s", assign.Expr.Type.Repr())
	}
}

func TestUnaryOperandShape(t *testing.T) {
	// unary nodes carry their operand as both children; the walker visits
	// both and then emits the operator
	fg, ok := analyze(t, `
def main() -> int {
	int x = -4
	return x
}`)
	expectClean(t, fg, ok)

	assign := fg.ReadyFunctions()[0].Body[0].(*forge.Assignment)

	want := []forge.ExpressionItem{
		{Kind: forge.ItemValue, Data: "4"},
		{Kind: forge.ItemValue, Data: "4"},
		{Kind: forge.ItemNegate},
	}

	if diff := deep.Equal(assign.Expr.Items, want); diff != nil {
		t.Errorf("postfix mismatch: %v", diff)
	}
}

func TestCallPromotionInsideExpression(t *testing.T) {
	fg, ok := analyze(t, `
def f(a: int) -> int { return a }

def main() -> int {
	int y = 2
	int z = f(y) + 1
	return z
}`)
	expectClean(t, fg, ok)

	assign := fg.ReadyFunctions()[1].Body[1].(*forge.Assignment)
	items := assign.Expr.Items

	if len(items) != 3 || items[0].Kind != forge.ItemCall {
		t.Fatalf("expected [call value add], got %v", items)
	}

	// the bare identifier argument must have been promoted to its VAR_ form
	if items[0].Params[0].Type != typing.VarStandardInteger {
		t.Errorf("expected promoted VAR int argument, got %s", items[0].Params[0].Type.Repr())
	}

	if !typing.BaseEqual(items[0].Params[0].Type, typing.StandardInteger) {
		t.Error("promoted argument is not base-equal to the parameter type")
	}
}

func TestRefArgumentPromotion(t *testing.T) {
	fg, ok := analyze(t, `
def f(ref a: int) -> int { return 0 }

def main() -> int {
	int y = 1
	f(ref y)
	return 0
}`)
	expectClean(t, fg, ok)

	call := fg.ReadyFunctions()[1].Body[1].(*forge.Call)
	if call.Params[0].Type != typing.RefStandardInteger {
		t.Errorf("expected promoted REF int argument, got %s", call.Params[0].Type.Repr())
	}
}

func TestIfChainConstruction(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	int x = 1
	if (x) {
		x = 2
	} elif (x - 1) {
		x = 3
	} else {
		x = 4
	}
	return x
}`)
	expectClean(t, fg, ok)

	chain, isIf := fg.ReadyFunctions()[0].Body[1].(*forge.If)
	if !isIf {
		t.Fatalf("expected an if instruction, got %T", fg.ReadyFunctions()[0].Body[1])
	}

	if chain.Kind != forge.KindIf {
		t.Error("head of chain is not an if")
	}

	elif := chain.Trail
	if elif == nil || elif.Kind != forge.KindElif {
		t.Fatal("expected an elif trail")
	}

	last := elif.Trail
	if last == nil || last.Kind != forge.KindElif {
		t.Fatal("expected the else to arrive as a trailing elif")
	}

	// the else condition is the constant 1
	wantCond := valueExpr(typing.StandardInteger, "1")
	if diff := deep.Equal(last.Cond, wantCond); diff != nil {
		t.Errorf("else condition mismatch: %v", diff)
	}

	if last.Trail != nil {
		t.Error("chain does not end at the else")
	}
}

func TestWhileContinueSites(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	int x = 10
	while (x) {
		x = x - 1
		continue
	}
	return 0
}`)
	expectClean(t, fg, ok)

	loop := fg.ReadyFunctions()[0].Body[1].(*forge.While)

	if len(loop.ContinueSites) != 1 || loop.ContinueSites[0] != 1 {
		t.Errorf("expected continue site at index 1, got %v", loop.ContinueSites)
	}

	if _, isContinue := loop.Body[1].(*forge.Continue); !isContinue {
		t.Errorf("expected a continue marker in the body, got %T", loop.Body[1])
	}

	if len(loop.BreakSites) != 0 {
		t.Error("a bare while must not record break sites")
	}
}

func TestForLoopLowering(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	int total = 0
	for (int i = 0; i < 10; i = i + 1) {
		total = total + i
	}
	return total
}`)
	expectClean(t, fg, ok)

	body := fg.ReadyFunctions()[0].Body

	// the loop variable is initialized before the loop, in the enclosing scope
	init, isAssign := body[1].(*forge.Assignment)
	if !isAssign || init.Var.Name != "i" {
		t.Fatalf("expected the loop variable declaration before the loop, got %T", body[1])
	}

	loop, isFor := body[2].(*forge.For)
	if !isFor {
		t.Fatalf("expected a for instruction, got %T", body[2])
	}

	// the step reassignment is the last body instruction
	step, isStep := loop.Body[len(loop.Body)-1].(*forge.Reassignment)
	if !isStep || step.Var.Name != "i" {
		t.Fatalf("expected the step reassignment last in the body")
	}

	if loop.Step != step {
		t.Error("loop step was not recorded")
	}
}

func TestBlockScopeShadowingRejected(t *testing.T) {
	// a block-local declaration must not collide with an enclosing one
	fg, ok := analyze(t, `
def main() -> int {
	int x = 1
	if (x) {
		int x = 2
	}
	return 0
}`)

	expectOneError(t, fg, ok, "not unique")
}

func TestBlockLocalsExpireWithTheirBlock(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	int x = 1
	if (x) {
		int y = 2
	}
	if (x) {
		int y = 3
	}
	return 0
}`)

	expectClean(t, fg, ok)
}

func TestVoidStyleReturn(t *testing.T) {
	fg, ok := analyze(t, `
def main() -> int {
	return
}`)
	expectClean(t, fg, ok)

	ret := fg.ReadyFunctions()[0].Body[0].(*forge.Return)
	if ret.Expr != nil {
		t.Error("expected a bare return to carry no expression")
	}
}

func TestNestedReturnDoesNotSatisfyWatcher(t *testing.T) {
	// a return inside a nested block does not count as the function's
	// explicit return
	fg, ok := analyze(t, `
def main() -> int {
	int x = 1
	if (x) {
		return 1
	}
}`)

	expectOneError(t, fg, ok, "matching return")
}
