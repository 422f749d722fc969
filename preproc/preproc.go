package preproc

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
)

// maxIncludeDepth bounds include nesting so cyclic or runaway inclusion
// chains cannot hang the compiler.
const maxIncludeDepth = 32

// sourceLine records where one line of the flattened buffer came from.
type sourceLine struct {
	file     string
	userLine int
	text     string
}

// Preprocessor resolves include directives into a single flattened source
// buffer while remembering, for every internal line, the file and user-visible
// line number it originated from.  The analyzer consults that mapping when it
// builds diagnostics.
type Preprocessor struct {
	lines  []sourceLine
	active map[string]bool
}

// New creates an empty preprocessor.
func New() *Preprocessor {
	return &Preprocessor{active: make(map[string]bool)}
}

// ProcessFile reads and flattens the file at path, following `#include "..."`
// directives relative to the including file's directory.  It returns the
// flattened source text.
func (p *Preprocessor) ProcessFile(path string) (string, error) {
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}

	return p.process(path, string(buff), 0)
}

// ProcessSource flattens already-loaded source text, attributing its lines to
// the given file name.  Includes are resolved relative to that name.
func (p *Preprocessor) ProcessSource(file, src string) (string, error) {
	return p.process(file, src, 0)
}

func (p *Preprocessor) process(file, src string, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("include depth exceeds %d: possible include cycle involving %s", maxIncludeDepth, file)
	}

	if p.active[file] {
		return "", fmt.Errorf("cyclic include of %s", file)
	}
	p.active[file] = true
	defer delete(p.active, file)

	var sb strings.Builder

	lines := strings.Split(src, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)

		if target, ok := parseInclude(trimmed); ok {
			incPath := filepath.Join(filepath.Dir(file), target)

			buff, err := ioutil.ReadFile(incPath)
			if err != nil {
				return "", fmt.Errorf("%s:%d: cannot include %q: %s", file, i+1, target, err)
			}

			flattened, err := p.process(incPath, string(buff), depth+1)
			if err != nil {
				return "", err
			}

			sb.WriteString(flattened)
			continue
		}

		p.lines = append(p.lines, sourceLine{file: file, userLine: i + 1, text: raw})
		sb.WriteString(raw)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// parseInclude recognizes a `#include "path"` directive.
func parseInclude(line string) (string, bool) {
	if !strings.HasPrefix(line, "#include") {
		return "", false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(line, "#include"))
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", false
	}

	return rest[1 : len(rest)-1], true
}

// FetchUserLineNumber maps an internal (post-flattening) line number, counted
// from 1, to the line number the user sees in their editor.
func (p *Preprocessor) FetchUserLineNumber(internal int) int {
	if internal < 1 || internal > len(p.lines) {
		return internal
	}

	return p.lines[internal-1].userLine
}

// FetchLine returns the source text of an internal line.
func (p *Preprocessor) FetchLine(internal int) string {
	if internal < 1 || internal > len(p.lines) {
		return ""
	}

	return p.lines[internal-1].text
}

// FileOf returns the file an internal line originated from.
func (p *Preprocessor) FileOf(internal int) string {
	if internal < 1 || internal > len(p.lines) {
		return ""
	}

	return p.lines[internal-1].file
}

// LineCount returns the number of flattened lines held by the preprocessor.
func (p *Preprocessor) LineCount() int {
	return len(p.lines)
}
