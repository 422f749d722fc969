package forge

import (
	"fmt"
	"io"

	"dusk/typing"
)

// emitter serializes completed IR functions into the textual assembly the
// Dusk VM assembler accepts.  One emitter is used per compilation run so
// label numbering stays unique across functions.
type emitter struct {
	w      io.Writer
	labels int

	// innermost loop labels for continue/break rewrites
	loopHeads []string
	loopEnds  []string

	err error
}

// EmitAssembly writes every ready function to w as VM assembly.
func (f *Forge) EmitAssembly(w io.Writer) error {
	e := &emitter{w: w}

	for _, fn := range f.ready {
		e.emitFunction(fn)
	}

	return e.err
}

func (e *emitter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}

	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *emitter) nextLabel(stem string) string {
	e.labels++
	return fmt.Sprintf(".%s_%d", stem, e.labels)
}

func (e *emitter) emitFunction(fn *Function) {
	e.printf("fn %s:\n", fn.Name)

	for _, p := range fn.Params {
		e.printf("\tparam %s\n", p.Name)
	}

	e.emitBody(fn.Body)
	e.printf("end\n\n")
}

func (e *emitter) emitBody(body []Instruction) {
	for _, ins := range body {
		e.emitInstruction(ins)
	}
}

func (e *emitter) emitInstruction(ins Instruction) {
	switch v := ins.(type) {
	case *Assignment:
		e.emitExpression(v.Expr)
		e.printf("\tstore %s\n", v.Var.Name)
	case *Reassignment:
		e.emitExpression(v.Expr)
		e.printf("\tstore %s\n", v.Var.Name)
	case *Return:
		if v.Expr != nil {
			e.emitExpression(v.Expr)
		}
		e.printf("\tret\n")
	case *Call:
		e.emitArguments(v.Params)
		e.printf("\tcall %s %d\n", v.Name, len(v.Params))
		e.printf("\tpop\n")
	case *Continue:
		e.printf("\tjmp %s\n", e.loopHeads[len(e.loopHeads)-1])
	case *Break:
		e.printf("\tjmp %s\n", e.loopEnds[len(e.loopEnds)-1])
	case *If:
		e.emitIfChain(v)
	case *While:
		e.emitLoop(v.Cond, v.Body)
	case *For:
		e.emitLoop(v.Cond, v.Body)
	default:
		e.err = fmt.Errorf("cannot emit instruction of type %T", ins)
	}
}

func (e *emitter) emitIfChain(chain *If) {
	end := e.nextLabel("endif")

	for link := chain; link != nil; link = link.Trail {
		next := e.nextLabel("elif")

		e.emitExpression(link.Cond)
		e.printf("\tjz %s\n", next)
		e.emitBody(link.Body)
		e.printf("\tjmp %s\n", end)
		e.printf("%s:\n", next)
	}

	e.printf("%s:\n", end)
}

func (e *emitter) emitLoop(cond *Expression, body []Instruction) {
	head := e.nextLabel("loop")
	end := e.nextLabel("endloop")

	e.loopHeads = append(e.loopHeads, head)
	e.loopEnds = append(e.loopEnds, end)

	e.printf("%s:\n", head)
	e.emitExpression(cond)
	e.printf("\tjz %s\n", end)
	e.emitBody(body)
	e.printf("\tjmp %s\n", head)
	e.printf("%s:\n", end)

	e.loopHeads = e.loopHeads[:len(e.loopHeads)-1]
	e.loopEnds = e.loopEnds[:len(e.loopEnds)-1]
}

func (e *emitter) emitExpression(expr *Expression) {
	for _, item := range expr.Items {
		switch item.Kind {
		case ItemValue:
			e.printf("\tpush %s\n", item.Data)
		case ItemVariable:
			e.printf("\tload %s\n", item.Data)
		case ItemCall:
			e.emitArguments(item.Params)
			e.printf("\tcall %s %d\n", item.Data, len(item.Params))
		default:
			e.printf("\t%s\n", item.Kind.Mnemonic())
		}
	}
}

func (e *emitter) emitArguments(params []*Variable) {
	for _, p := range params {
		switch {
		case typing.BaseOf(p.Type) == typing.Undefined:
			e.err = fmt.Errorf("unresolved argument %q reached the emitter", p.Name)
		case p.Type == typing.RefStandardInteger,
			p.Type == typing.RefStandardDouble,
			p.Type == typing.RefStandardChar,
			p.Type == typing.RefStandardString:
			e.printf("\tref %s\n", p.Name)
		case p.Type == typing.VarStandardInteger,
			p.Type == typing.VarStandardDouble,
			p.Type == typing.VarStandardChar,
			p.Type == typing.VarStandardString:
			e.printf("\tload %s\n", p.Name)
		default:
			e.printf("\tpush %s\n", p.Name)
		}
	}
}
