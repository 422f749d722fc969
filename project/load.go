package project

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"dusk/common"

	"github.com/pelletier/go-toml"
)

// tomlProjectFile represents the project file as it is encoded in TOML
type tomlProjectFile struct {
	Project  *tomlProject  `toml:"project"`
	Compiler *tomlCompiler `toml:"compiler"`
}

// tomlProject represents a Dusk project as it is encoded in TOML
type tomlProject struct {
	Name   string `toml:"name"`
	Entry  string `toml:"entry"`
	Output string `toml:"output,omitempty"`
}

// tomlCompiler represents the compiler knobs as they are encoded in TOML
type tomlCompiler struct {
	MaxParams int    `toml:"max-params,omitempty"`
	LogLevel  string `toml:"log-level,omitempty"`
}

// Project is the validated, merged project configuration the driver builds
// against.
type Project struct {
	Name   string
	Root   string
	Entry  string
	Output string

	MaxParams int
	LogLevel  string
}

// LoadProject loads and validates the project file in the given directory,
// filling defaults for everything the file omits.
func LoadProject(path string) (*Project, error) {
	f, err := os.Open(filepath.Join(path, common.ProjectFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tpf := &tomlProjectFile{}
	if err := toml.Unmarshal(buff, tpf); err != nil {
		return nil, err
	}

	if tpf.Project == nil {
		return nil, fmt.Errorf("missing [project] table in %s", common.ProjectFileName)
	}

	proj := &Project{
		Name:      tpf.Project.Name,
		Root:      path,
		Entry:     tpf.Project.Entry,
		Output:    tpf.Project.Output,
		MaxParams: common.DefaultMaxParams,
		LogLevel:  "verbose",
	}

	if err := validateProject(proj); err != nil {
		return nil, err
	}

	if proj.Output == "" {
		proj.Output = strings.TrimSuffix(proj.Entry, common.SrcFileExtension) + common.OutFileExtension
	}

	if tpf.Compiler != nil {
		if tpf.Compiler.MaxParams != 0 {
			if tpf.Compiler.MaxParams < 0 {
				return nil, fmt.Errorf("max-params must be positive, got %d", tpf.Compiler.MaxParams)
			}

			proj.MaxParams = tpf.Compiler.MaxParams
		}

		if tpf.Compiler.LogLevel != "" {
			proj.LogLevel = tpf.Compiler.LogLevel
		}
	}

	return proj, nil
}

// validateProject checks that the required project file contents are present
func validateProject(proj *Project) error {
	if proj.Name == "" {
		return fmt.Errorf("missing project name for project at %s", proj.Root)
	}

	if proj.Entry == "" {
		return fmt.Errorf("missing entry file for project at %s", proj.Root)
	}

	if !strings.HasSuffix(proj.Entry, common.SrcFileExtension) {
		return fmt.Errorf("entry file %s must have the %s extension", proj.Entry, common.SrcFileExtension)
	}

	return nil
}
