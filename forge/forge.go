package forge

import "dusk/report"

// Forge owns the shared back-end state of a compilation run: the diagnostic
// reporter, the memory layout manager, and the list of completed IR functions
// awaiting code generation.  The analyzer hands each function over exactly
// once, after its whole body has been walked.
type Forge struct {
	reporter *report.Reporter
	memory   *Memory
	ready    []*Function
}

// NewForge creates a forge with a fresh reporter and memory manager.
func NewForge() *Forge {
	return &Forge{
		reporter: report.NewReporter(),
		memory:   NewMemory(),
	}
}

// Reporter returns the run's diagnostic reporter.
func (f *Forge) Reporter() *report.Reporter {
	return f.reporter
}

// Memory returns the run's layout manager.
func (f *Forge) Memory() *Memory {
	return f.memory
}

// AddReadyFunction transfers ownership of a completed IR function.
func (f *Forge) AddReadyFunction(fn *Function) {
	f.ready = append(f.ready, fn)
}

// ReadyFunctions returns the completed functions in hand-off order.
func (f *Forge) ReadyFunctions() []*Function {
	return f.ready
}

// ResetMemory clears the layout manager between functions.
func (f *Forge) ResetMemory() {
	f.memory.Reset()
}
