// Package cli provides command-line interface functionality for zimhide.
package cli

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Reporter renders status and error output for terminal operations and
// tracks whether the operation was cancelled via Ctrl+C.
type Reporter struct {
	quiet     bool
	cancelled atomic.Bool
}

// NewReporter creates a new CLI reporter.
// If quiet is true, only errors are printed.
func NewReporter(quiet bool) *Reporter {
	return &Reporter{
		quiet: quiet,
	}
}

// Cancel marks the operation as cancelled.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

// PrintError prints an error message.
func (r *Reporter) PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a success message.
func (r *Reporter) PrintSuccess(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
