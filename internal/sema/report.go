package sema

import (
	"fmt"

	"decaf/internal/diag"
	"decaf/internal/source"
)

// countingReporter forwards to the caller's reporter and remembers whether
// anything at error severity went through.
type countingReporter struct {
	next   diag.Reporter
	errors int
	total  int
}

func (r *countingReporter) Report(d diag.Diagnostic) {
	r.total++
	if d.Severity >= diag.SevError {
		r.errors++
	}
	if r.next != nil {
		r.next.Report(d)
	}
}

func (a *analyzer) report(code diag.Code, pos source.Pos, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	diag.ReportError(a.reporter, code, pos, msg).Emit()
}

// must turns a contract violation into a panic.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

func arityMessage(method string, want, got int) string {
	noun := "arguments"
	if want == 1 {
		noun = "argument"
	}
	return fmt.Sprintf("method '%s' takes %d %s, got %d", method, want, noun, got)
}

func paramMessage(method string, pos int, param, want, got string) string {
	return fmt.Sprintf("argument %d of '%s' must be %s for parameter '%s', got %s", pos, method, want, param, got)
}
