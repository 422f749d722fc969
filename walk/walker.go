package walk

import (
	"dusk/ast"
	"dusk/forge"
	"dusk/preproc"
	"dusk/report"
	"dusk/symbols"
)

// Walker performs semantic analysis on a translation unit and lowers it to
// forge IR.  It owns the symbol table, the aggregator stack, and the scratch
// postfix buffer; the forge and preprocessor are shared collaborators.
type Walker struct {
	forge *forge.Forge
	table *symbols.SymbolTable
	pre   *preproc.Preprocessor

	// maxParams is the hard cap on function parameter counts
	maxParams int

	// currentFunction is the source function being analyzed
	currentFunction *ast.Function

	// aggregators is the LIFO stack of compound IR statements under
	// construction; currentAggregator caches its top
	aggregators       []forge.Aggregator
	currentAggregator forge.Aggregator

	// continuable is the nearest enclosing loop accepting continue;
	// breakable is the nearest enclosing named loop accepting break
	continuable forge.Continuable
	breakable   forge.Breakable

	// exprItems is the scratch postfix buffer reused by the expression
	// builders; it is cleared at the start of each new expression
	exprItems []forge.ExpressionItem

	programWatcher struct {
		hasMain bool
	}
	functionWatcher struct {
		hasReturn bool
	}
}

// NewWalker creates a walker that reports and allocates through the given
// forge and resolves source locations through the given preprocessor.
func NewWalker(f *forge.Forge, pre *preproc.Preprocessor, maxParams int) *Walker {
	return &Walker{
		forge:     f,
		table:     symbols.NewSymbolTable(f.Memory()),
		pre:       pre,
		maxParams: maxParams,
	}
}

// Table exposes the walker's symbol table for inspection after a walk.
func (w *Walker) Table() *symbols.SymbolTable {
	return w.table
}

// walkAbort is the panic sentinel raised after a diagnostic that makes
// continuing the walk unsafe.  WalkUnit recovers it.
type walkAbort struct{}

// WalkUnit analyzes a whole translation unit in source order.  It returns
// false if any error-level diagnostic was issued.  An aborting diagnostic
// stops the walk; the reports issued up to that point stand.
func (w *Walker) WalkUnit(fns []*ast.Function) bool {
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(walkAbort); ok {
					return
				}

				panic(r)
			}
		}()

		for _, fn := range fns {
			w.walkFunction(fn)
		}

		if !w.programWatcher.hasMain {
			w.forge.Reporter().Issue(&report.SemanticReport{
				Level:    report.LevelError,
				File:     w.pre.FileOf(1),
				UserLine: 0,
				Messages: []string{"Program does not define a \"main\" function"},
			})
		}
	}()

	return w.forge.Reporter().ShouldProceed()
}

// -----------------------------------------------------------------------------

// semanticError issues an error-level user diagnostic at the given internal
// line and aborts the walk of the translation unit.
func (w *Walker) semanticError(line int, messages ...string) {
	w.forge.Reporter().Issue(&report.SemanticReport{
		Level:    report.LevelError,
		File:     w.pre.FileOf(line),
		UserLine: w.pre.FetchUserLineNumber(line),
		LineText: w.pre.FetchLine(line),
		Messages: messages,
	})

	panic(walkAbort{})
}

// semanticWarning issues a warning-level user diagnostic; the walk continues.
func (w *Walker) semanticWarning(line int, messages ...string) {
	w.forge.Reporter().Issue(&report.SemanticReport{
		Level:    report.LevelWarning,
		File:     w.pre.FileOf(line),
		UserLine: w.pre.FetchUserLineNumber(line),
		LineText: w.pre.FetchLine(line),
		Messages: messages,
	})
}

// internalError issues a compiler-internal report and aborts immediately.
func (w *Walker) internalError(function string, messages ...string) {
	w.forge.Reporter().Issue(&report.InternalReport{
		Component: "walk.Walker",
		File:      "walker.go",
		Function:  function,
		Messages:  messages,
	})

	panic(walkAbort{})
}

// -----------------------------------------------------------------------------

// pushAggregator makes agg the receiver of newly built instructions.
func (w *Walker) pushAggregator(agg forge.Aggregator) {
	w.aggregators = append(w.aggregators, agg)
	w.currentAggregator = agg
}

// popAggregator closes the top aggregator.  The stack must stay non-empty
// for the remainder of the enclosing function body.
func (w *Walker) popAggregator() {
	if len(w.aggregators) == 0 {
		w.internalError("popAggregator", "Aggregator stack empty on pop")
	}

	w.aggregators = w.aggregators[:len(w.aggregators)-1]

	if len(w.aggregators) > 0 {
		w.currentAggregator = w.aggregators[len(w.aggregators)-1]
	} else {
		w.currentAggregator = nil
	}
}
