package logging

import (
	"fmt"
	"io"
	"os"
)

// User-facing output, separate from the structured debug logging.
// Stdout and Stderr can be swapped by tests.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...any) {
	fmt.Fprintf(Stdout, "ℹ "+format+"\n", args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...any) {
	fmt.Fprintf(Stdout, "✓ "+format+"\n", args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...any) {
	fmt.Fprintf(Stderr, "⚠ "+format+"\n", args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...any) {
	fmt.Fprintf(Stderr, "✗ "+format+"\n", args...)
}
