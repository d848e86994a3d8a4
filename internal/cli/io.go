package cli

import (
	"fmt"
	"io"
)

// IO handles command output. The core packages perform no logging;
// everything the user sees goes through here.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// Warn records a non-fatal issue. Warnings are printed to stderr by
// Finish so they land after the command's regular output.
func (o *IO) Warn(msg string) {
	o.warnings = append(o.warnings, msg)
}

// Finish flushes collected warnings to stderr. Warnings do not change
// the exit code; a bump that completed is a completed bump.
func (o *IO) Finish() {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}
}
