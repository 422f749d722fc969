package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dusk/common"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------
// This section contains the display functions for the two report kinds --
// these are invoked by the reporter when its contents are flushed.

func (sr *SemanticReport) display() {
	sr.displayBanner()

	for _, msg := range sr.Messages {
		fmt.Println(msg)
	}

	if sr.LineText != "" {
		sr.displayCodeSelection()
	}
}

// displayBanner displays the banner on top of every semantic report
func (sr *SemanticReport) displayBanner() {
	fmt.Print("\n\n-- ")

	var kindLen int
	switch sr.Level {
	case LevelWarning:
		WarnStyleBG.Print("Semantic Warning")
		kindLen = len("Semantic Warning")
	case LevelFatal:
		ErrorStyleBG.Print("Fatal Error")
		kindLen = len("Fatal Error")
	default:
		ErrorStyleBG.Print("Semantic Error")
		kindLen = len("Semantic Error")
	}

	fmt.Print(" ")

	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}

	dashCount := bannerLen - len(sr.File) - kindLen - 1
	if dashCount < 1 {
		dashCount = 1
	}

	fmt.Print(strings.Repeat("-", dashCount) + " ")
	InfoColorFG.Println(sr.File)
}

// displayCodeSelection displays the offending source line (with its user
// visible line number) and highlights the reported column
func (sr *SemanticReport) displayCodeSelection() {
	fmt.Println()

	line := strings.ReplaceAll(sr.LineText, "\t", "    ")

	lineNumberWidth := len(strconv.Itoa(sr.UserLine)) + 1
	InfoColorFG.Print(fmt.Sprintf("%-"+strconv.Itoa(lineNumberWidth)+"v", sr.UserLine))
	fmt.Print("|  ")
	fmt.Println(line)

	fmt.Print(strings.Repeat(" ", lineNumberWidth), "|  ")
	if sr.Col > 0 && sr.Col <= len(line) {
		fmt.Print(strings.Repeat(" ", sr.Col-1))
		ErrorColorFG.Println("^")
	} else {
		ErrorColorFG.Println(strings.Repeat("^", len(line)))
	}

	fmt.Println()
}

const internalErrorPostlude = `
This is likely a bug in the compiler.
Please open an issue on Github: github.com/dusk-lang/dusk`

func (ir *InternalReport) display() {
	fmt.Print("\n\n")
	ErrorStyleBG.Print("Internal Error ")
	ErrorColorFG.Printf("%s (%s: %s)\n", ir.Component, ir.File, ir.Function)

	for _, msg := range ir.Messages {
		fmt.Println(msg)
	}

	InfoColorFG.Println(internalErrorPostlude)
}

// -----------------------------------------------------------------------------

// DisplayCompileHeader displays the compiler information before compilation
func DisplayCompileHeader(target string) {
	fmt.Print("dusk ")
	InfoColorFG.Print("v" + common.DuskVersion)
	fmt.Print(" -- target: ")
	InfoColorFG.Println(target)
}

// phaseSpinner stores the current phase spinner
var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Preprocessing")

// DisplayBeginPhase displays the beginning of a compilation phase
func DisplayBeginPhase(phase string) {
	currentPhase = phase
	phaseText := phase + "..." + strings.Repeat(" ", maxPhaseLength-len(phase)+2)
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

// DisplayEndPhase displays the end of a compilation phase
func DisplayEndPhase(success bool) {
	if phaseSpinner != nil {
		if success {
			phaseSpinner.Success(
				currentPhase+strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2),
				fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()),
			)
		} else {
			phaseSpinner.Fail(currentPhase + strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2))
		}

		phaseSpinner = nil
	}
}

// DisplayCompilationFinished displays the closing message for compilation
func DisplayCompilationFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}
