package report

import "sync"

// Reporter accumulates reports issued during a compilation run.  Reports are
// recorded immediately but only rendered when Flush is called so the analysis
// phases stay testable.  The reporter is owned by the forge and shared by
// every phase of the compiler.
type Reporter struct {
	errorCount   int
	warningCount int
	internalSeen bool

	// warnings are held back and rendered after compilation finishes
	warnings []Report

	// rendered holds error reports in issue order until Flush
	rendered []Report

	// m synchronizes issue/flush so concurrent phases cannot interleave
	m *sync.Mutex
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{m: &sync.Mutex{}}
}

// Issue records a report.  Errors bump the error count; warnings are held
// until the end of compilation.
func (r *Reporter) Issue(rep Report) {
	r.m.Lock()
	defer r.m.Unlock()

	if rep.isError() {
		r.errorCount++
		r.rendered = append(r.rendered, rep)

		if _, ok := rep.(*InternalReport); ok {
			r.internalSeen = true
		}
	} else {
		r.warningCount++
		r.warnings = append(r.warnings, rep)
	}
}

// ShouldProceed indicates whether compilation may continue to the next phase.
func (r *Reporter) ShouldProceed() bool {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount == 0
}

// ErrorCount returns the number of error-level reports issued so far.
func (r *Reporter) ErrorCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount
}

// HasInternal indicates whether a compiler-internal report was issued.
func (r *Reporter) HasInternal() bool {
	r.m.Lock()
	defer r.m.Unlock()

	return r.internalSeen
}

// Reports returns every error-level report in issue order.
func (r *Reporter) Reports() []Report {
	r.m.Lock()
	defer r.m.Unlock()

	out := make([]Report, len(r.rendered))
	copy(out, r.rendered)
	return out
}

// Flush renders all recorded errors followed by all held warnings.
func (r *Reporter) Flush() {
	r.m.Lock()
	defer r.m.Unlock()

	for _, rep := range r.rendered {
		rep.display()
	}

	for _, rep := range r.warnings {
		rep.display()
	}

	r.rendered = nil
	r.warnings = nil
}

// WarningCount returns the number of warnings issued so far.
func (r *Reporter) WarningCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.warningCount
}
