package forge_test

import (
	"strings"
	"testing"

	"dusk/forge"
	"dusk/typing"
)

func TestMemoryLayout(t *testing.T) {
	m := forge.NewMemory()

	aOff, err := m.Allocate("a", typing.StandardInteger)
	if err != nil {
		t.Fatalf("allocate a: %v", err)
	}

	bOff, err := m.Allocate("b", typing.StandardDouble)
	if err != nil {
		t.Fatalf("allocate b: %v", err)
	}

	if aOff != 0 || bOff != forge.WordSize {
		t.Errorf("unexpected offsets: a=%d b=%d", aOff, bOff)
	}

	if _, err := m.Allocate("a", typing.StandardInteger); err == nil {
		t.Error("expected double allocation to fail")
	}

	if _, err := m.Allocate("u", typing.Unknown); err == nil {
		t.Error("expected allocation of an unresolved type to fail")
	}

	m.Release("a")
	if _, ok := m.OffsetOf("a"); ok {
		t.Error("released slot still resolves")
	}

	m.Reset()
	if m.FrameSize() != 0 {
		t.Error("reset did not clear the frame")
	}

	if off, err := m.Allocate("c", typing.StandardChar); err != nil || off != 0 {
		t.Errorf("allocation after reset: off=%d err=%v", off, err)
	}
}

func TestReadyFunctionOrder(t *testing.T) {
	fg := forge.NewForge()

	fg.AddReadyFunction(forge.NewFunction("first", typing.StandardInteger, nil))
	fg.AddReadyFunction(forge.NewFunction("second", typing.StandardInteger, nil))

	fns := fg.ReadyFunctions()
	if len(fns) != 2 || fns[0].Name != "first" || fns[1].Name != "second" {
		t.Errorf("hand-off order lost: %v", fns)
	}
}

func TestEmitAssembly(t *testing.T) {
	fg := forge.NewForge()

	loop := &forge.While{
		Cond: &forge.Expression{
			Type:  typing.StandardInteger,
			Items: []forge.ExpressionItem{{Kind: forge.ItemVariable, Data: "L"}},
		},
	}
	loop.AddBreak("L")

	fn := forge.NewFunction("main", typing.StandardInteger, nil)
	fn.AddInstruction(&forge.Assignment{
		Var: forge.NewVariable("L", typing.StandardInteger),
		Expr: &forge.Expression{
			Type:  typing.StandardInteger,
			Items: []forge.ExpressionItem{{Kind: forge.ItemValue, Data: "1"}},
		},
	})
	fn.AddInstruction(loop)
	fn.AddInstruction(&forge.Return{
		Expr: &forge.Expression{
			Type:  typing.StandardInteger,
			Items: []forge.ExpressionItem{{Kind: forge.ItemValue, Data: "0"}},
		},
	})
	fg.AddReadyFunction(fn)

	var sb strings.Builder
	if err := fg.EmitAssembly(&sb); err != nil {
		t.Fatalf("emit: %v", err)
	}

	out := sb.String()

	for _, want := range []string{"fn main:", "push 1", "store L", "load L", "jz", "ret"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// the break jumps to the loop's end label
	if !strings.Contains(out, "endloop") {
		t.Errorf("output missing loop end label:\n%s", out)
	}
}

func TestContinueAndBreakSites(t *testing.T) {
	loop := &forge.While{}

	loop.AddInstruction(&forge.Reassignment{Var: forge.NewVariable("x", typing.StandardInteger)})
	loop.AddContinueStatement()
	loop.AddBreak("L")

	if len(loop.ContinueSites) != 1 || loop.ContinueSites[0] != 1 {
		t.Errorf("continue sites: %v", loop.ContinueSites)
	}

	if len(loop.BreakSites) != 1 || loop.BreakSites[0] != 2 {
		t.Errorf("break sites: %v", loop.BreakSites)
	}

	if brk, ok := loop.Body[2].(*forge.Break); !ok || brk.Name != "L" {
		t.Errorf("break marker missing or unnamed: %T", loop.Body[2])
	}
}
