// Package errors provides diagnostic reporting for the Algol 60
// translator. Diagnostics are formatted as
//
//	<filename>:<line>: <message>
//	<filename>:<line>: warning: <message>
//
// and written to a configurable sink (stderr in the CLI). The reporter
// counts errors and warnings and enforces an optional error ceiling:
// when the configured maximum is reached, translation is aborted
// through a typed bailout panic which the driver recovers at its
// boundary.
package errors

import (
	"fmt"
	"io"
	"strings"
)

// Diagnostic represents a single translation diagnostic with its
// source position.
type Diagnostic struct {
	File    string
	Line    int
	Message string
	Warning bool
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Format()
}

// Format renders the diagnostic in the canonical file:line form.
func (d *Diagnostic) Format() string {
	var sb strings.Builder
	sb.WriteString(d.File)
	sb.WriteString(fmt.Sprintf(":%d: ", d.Line))
	if d.Warning {
		sb.WriteString("warning: ")
	}
	sb.WriteString(d.Message)
	return sb.String()
}

// Bailout is the value thrown when the error ceiling is reached. The
// driver recovers it and turns it into an ordinary error; any other
// panic is re-raised.
type Bailout struct {
	Count int
}

// Reporter accumulates diagnostics for one translation.
type Reporter struct {
	File     string
	Sink     io.Writer // usually os.Stderr
	Echo     io.Writer // optional second sink (debug output file)
	ErrorMax int       // 0 = unlimited, otherwise 1..255
	NoWarn   bool      // suppress warnings entirely
	Quiet    bool      // drop warnings without counting (second pass)

	errCount  int
	warnCount int
	all       []Diagnostic
}

// NewReporter creates a reporter writing to sink.
func NewReporter(file string, sink io.Writer) *Reporter {
	return &Reporter{File: file, Sink: sink}
}

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int { return r.errCount }

// WarningCount returns the number of warnings reported so far.
func (r *Reporter) WarningCount() int { return r.warnCount }

// Diagnostics returns all diagnostics reported so far, in order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.all }

// Reset clears the error counter between passes while keeping the
// configuration and the collected diagnostics.
func (r *Reporter) Reset() {
	r.errCount = 0
}

func (r *Reporter) emit(d Diagnostic) {
	r.all = append(r.all, d)
	if r.Sink != nil {
		fmt.Fprintln(r.Sink, d.Format())
	}
	if r.Echo != nil {
		fmt.Fprintln(r.Echo, ">>"+d.Format())
	}
}

// Errorf reports a translation error at the given source line.
func (r *Reporter) Errorf(line int, format string, args ...any) {
	r.emit(Diagnostic{
		File:    r.File,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
	r.errCount++
	if r.ErrorMax != 0 && r.errCount == r.ErrorMax {
		r.emit(Diagnostic{
			File:    r.File,
			Line:    line,
			Message: "too many errors detected; translation terminated",
		})
		r.errCount++
		panic(Bailout{Count: r.errCount})
	}
}

// Warningf reports a warning at the given source line. Warnings are
// suppressed when NoWarn is set and dropped without counting when
// Quiet is set (the second pass would otherwise repeat every warning
// of the first).
func (r *Reporter) Warningf(line int, format string, args ...any) {
	if r.NoWarn || r.Quiet {
		return
	}
	r.emit(Diagnostic{
		File:    r.File,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
		Warning: true,
	})
	r.warnCount++
}
