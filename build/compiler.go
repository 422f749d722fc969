package build

import (
	"os"
	"path/filepath"

	"dusk/forge"
	"dusk/preproc"
	"dusk/project"
	"dusk/report"
	"dusk/syntax"
	"dusk/walk"
)

// Compiler is the data structure responsible for maintaining the high-level
// state of one compilation run: the loaded project, the preprocessor, and
// the forge that collects the run's results.
type Compiler struct {
	proj *project.Project

	pre *preproc.Preprocessor
	fg  *forge.Forge
}

// NewCompiler creates a new compiler for a loaded project.
func NewCompiler(proj *project.Project) *Compiler {
	return &Compiler{
		proj: proj,
		pre:  preproc.New(),
		fg:   forge.NewForge(),
	}
}

// Forge exposes the run's forge, primarily so callers can read diagnostics.
func (c *Compiler) Forge() *forge.Forge {
	return c.fg
}

// Compile runs the full compilation algorithm on the project's entry file
// and, on success, writes the VM assembly output.  It returns whether the
// run succeeded.
func (c *Compiler) Compile() bool {
	if !c.Analyze() {
		return false
	}

	report.DisplayBeginPhase("Generating")

	out, err := os.Create(filepath.Join(c.proj.Root, c.proj.Output))
	if err != nil {
		report.DisplayEndPhase(false)
		report.PrintErrorMessage("Output Error", err)
		return false
	}
	defer out.Close()

	if err := c.fg.EmitAssembly(out); err != nil {
		report.DisplayEndPhase(false)
		report.PrintErrorMessage("Generation Error", err)
		return false
	}

	report.DisplayEndPhase(true)
	return true
}

// Analyze runs the front half of compilation: preprocess, scan, parse, and
// semantic analysis.  It is exported for editor/IDE style usage where no
// output is wanted.  It returns whether analysis succeeded.
func (c *Compiler) Analyze() bool {
	reporter := c.fg.Reporter()

	// preprocess the entry file into one flattened buffer
	report.DisplayBeginPhase("Preprocessing")
	src, err := c.pre.ProcessFile(filepath.Join(c.proj.Root, c.proj.Entry))
	if err != nil {
		report.DisplayEndPhase(false)
		report.PrintErrorMessage("Preprocessor Error", err)
		return false
	}
	report.DisplayEndPhase(true)

	// scan and parse the flattened buffer
	report.DisplayBeginPhase("Parsing")
	tokens, err := syntax.NewScanner(src).Tokenize()
	if err != nil {
		report.DisplayEndPhase(false)
		report.PrintErrorMessage("Syntax Error", err)
		return false
	}

	fns, err := syntax.NewParser(tokens).Parse()
	if err != nil {
		report.DisplayEndPhase(false)
		report.PrintErrorMessage("Syntax Error", err)
		return false
	}
	report.DisplayEndPhase(true)

	// walk the unit: semantic checks and IR lowering
	report.DisplayBeginPhase("Analyzing")
	ok := walk.NewWalker(c.fg, c.pre, c.proj.MaxParams).WalkUnit(fns)
	report.DisplayEndPhase(ok)

	reporter.Flush()
	return ok && reporter.ShouldProceed()
}
