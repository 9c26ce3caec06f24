// Package diagnostics implements the error reporter half of C8: formatting
// a pending engine exception to the diagnostic stream, and the shared
// process-abort primitive every other component uses when spec §7 calls
// for aborting rather than returning a recoverable error (call-phase
// exceptions, state-machine violations, allocation failures, signature
// coercion failures).
package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Stream wraps the diagnostic io.Writer with a TTY check so exception
// frames can be lightly highlighted when written to an interactive
// terminal, matching the teacher's own go-isatty-gated log formatting.
type Stream struct {
	W      io.Writer
	IsTerm bool
}

// NewStream wraps w, probing whether it is an interactive terminal via
// its Fd() method when available (os.Stderr satisfies this; a plain
// bytes.Buffer used in tests does not, and is treated as non-terminal).
func NewStream(w io.Writer) *Stream {
	isTerm := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		isTerm = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Stream{W: w, IsTerm: isTerm}
}

// ReportException formats a descriptive report, highlighted if the stream
// is a terminal. Used by check_init (pending exception from a compile or
// link failure) and nowhere else — call-phase exceptions go through Abort
// instead, since spec §7 aborts the process rather than returning a code.
func (s *Stream) ReportException(phase, text string) {
	if s.IsTerm {
		fmt.Fprintf(s.W, "\x1b[31m%s: %s\x1b[0m\n", phase, text)
		return
	}
	fmt.Fprintf(s.W, "%s: %s\n", phase, text)
}

// Abort prints a one-line diagnostic and terminates the process
// immediately (spec §7: "everything else is a programming error whose
// best response is to crash predictably"). Never returns.
func Abort(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
	os.Exit(1)
}
