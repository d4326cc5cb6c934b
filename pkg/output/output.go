// Package output provides styled terminal output for the kite CLI.
//
// Functions use lipgloss for styling but abstract away the details from
// callers. Everything is written to stderr so a report streamed to stdout
// is never interleaved with status lines.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	verboseMode bool
	writer      io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose output.
func SetVerbose(v bool) {
	verboseMode = v
}

// SetWriter redirects all output. Passing nil restores stderr.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	writer = w
}

// Success prints a success message.
//
// Example:
//
//	output.Success("Exported report to .ai/project_context.json")
func Success(msg string) {
	fmt.Fprintln(writer, successStyle.Render("🪁 "+msg))
}

// Error prints an error message that needs user attention.
func Error(msg string) {
	fmt.Fprintln(writer, errorStyle.Render("❌ "+msg))
}

// Warn prints a degraded-but-continuing message, e.g. an analyzer that was
// marked unavailable.
func Warn(msg string) {
	fmt.Fprintln(writer, warnStyle.Render("⚠️  "+msg))
}

// Info prints an informational message.
func Info(msg string) {
	fmt.Fprintln(writer, infoStyle.Render("ℹ️  "+msg))
}

// Step prints an indented sub-item in gray.
//
// Example:
//
//	output.Step("structure: 412 files")
func Step(msg string) {
	fmt.Fprintln(writer, stepStyle.Render("   "+msg))
}

// Verbose prints a debug message only if verbose mode is enabled.
func Verbose(msg string) {
	if verboseMode {
		fmt.Fprintln(writer, stepStyle.Render("🔍 "+msg))
	}
}
