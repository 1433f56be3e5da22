// Package diag provides the single non-fatal-warning sink threaded
// through every pipeline stage (container, flow, ast, structure),
// mirroring unpack_ai.py/decompile_ai.py's show_alerts-gated eprint.
package diag

import (
	"fmt"
	"io"
)

// Sink receives a formatted warning. Every pipeline package declares its
// own Diagnostics/Warnf-shaped interface rather than importing this one
// directly (so lang/container, lang/flow, lang/ast and lang/structure stay
// free of any internal/ dependency); Writer and Discard both satisfy all
// of them structurally.
type Sink interface {
	Warnf(format string, args ...any)
}

// Writer writes every warning to an io.Writer, prefixed the way
// unpack_ai.py's eprint wrote straight to stderr.
type Writer struct {
	Out io.Writer
}

func (w Writer) Warnf(format string, args ...any) {
	fmt.Fprintf(w.Out, "warning: "+format+"\n", args...)
}

// Discard drops every warning, equivalent to running with --hide_alerts.
type Discard struct{}

func (Discard) Warnf(string, ...any) {}

// New returns a Writer over out if hideAlerts is false, or Discard
// otherwise.
func New(out io.Writer, hideAlerts bool) Sink {
	if hideAlerts {
		return Discard{}
	}
	return Writer{Out: out}
}
