// Package input provides interactive terminal prompts.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Confirm asks the user a yes/no question on stdin/stderr.
// If defaultYes is true, pressing Enter returns true.
//
// Example:
//
//	if input.Confirm("Overwrite .ai/project_context.json?", false) {
//	    // write
//	}
func Confirm(message string, defaultYes bool) bool {
	return ConfirmFrom(os.Stdin, os.Stderr, message, defaultYes)
}

// ConfirmFrom is Confirm with explicit streams.
func ConfirmFrom(in io.Reader, out io.Writer, message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	fmt.Fprint(out, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return defaultYes
	}

	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer == "" {
		return defaultYes
	}

	return answer == "y" || answer == "yes"
}
