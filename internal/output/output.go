// Package output provides styled terminal output for user-facing messages.
// Success goes to stdout; warnings and errors go to stderr so pipelines can
// capture session names cleanly.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	sessionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

// Stdout and Stderr are the output sinks. Tests may swap them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Success prints a green message to stdout.
func Success(format string, args ...any) {
	fmt.Fprintln(Stdout, successStyle.Render(fmt.Sprintf(format, args...)))
}

// Info prints an unstyled message to stdout.
func Info(format string, args ...any) {
	fmt.Fprintln(Stdout, fmt.Sprintf(format, args...))
}

// Warning prints a yellow message to stderr.
func Warning(format string, args ...any) {
	fmt.Fprintln(Stderr, warningStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints a red message to stderr.
func Error(format string, args ...any) {
	fmt.Fprintln(Stderr, errorStyle.Render(fmt.Sprintf(format, args...)))
}

// Session renders a session name for list output.
func Session(name string) string {
	return sessionStyle.Render(name)
}
