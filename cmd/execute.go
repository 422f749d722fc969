package cmd

import (
	"os"
	"path/filepath"

	"dusk/build"
	"dusk/common"
	"dusk/project"
	"dusk/report"

	"github.com/ComedicChimera/olive"
)

// Execute runs the main `dusk` application
func Execute() {
	// set up the argument parser and all its commands and arguments
	cli := olive.NewCLI("dusk", "dusk is a tool for managing Dusk projects", true)

	buildCmd := cli.AddSubcommand("build", "compile a project", true)
	buildCmd.AddPrimaryArg("project-path", "the path to the project to build", true)
	buildCmd.AddFlag("check", "c", "analyze the project without generating output")

	cli.AddSubcommand("version", "print the Dusk version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		return
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		execBuildCommand(subResult)
	case "version":
		report.PrintInfoMessage("Dusk Version", common.DuskVersion)
	}
}

// execBuildCommand executes the build subcommand and handles all errors
func execBuildCommand(result *olive.ArgParseResult) {
	projectRelPath, _ := result.PrimaryArg()

	projectPath, err := filepath.Abs(projectRelPath)
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return
	}

	// attempt to load the project file
	proj, err := project.LoadProject(projectPath)
	if err != nil {
		report.PrintErrorMessage("Project Load Error", err)
		return
	}

	report.DisplayCompileHeader(proj.Name)

	c := build.NewCompiler(proj)

	var ok bool
	if result.HasFlag("check") {
		ok = c.Analyze()
	} else {
		ok = c.Compile()
	}

	reporter := c.Forge().Reporter()
	report.DisplayCompilationFinished(ok, reporter.ErrorCount(), reporter.WarningCount())

	if !ok {
		os.Exit(1)
	}
}
