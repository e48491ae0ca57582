package diag

import "decaf/internal/source"

// Reporter принимает готовые диагностики от анализатора.
// Реализации: BagReporter, DedupReporter, ReporterFunc.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a plain function.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// BagReporter stores into Bag; a nil Bag swallows everything.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// ReportBuilder collects notes until Emit hands the diagnostic over.
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	done bool
}

// ReportError starts an error diagnostic for r.
func ReportError(r Reporter, code Code, primary source.Pos, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: NewError(code, primary, msg)}
}

// ReportWarning starts a warning diagnostic for r.
func ReportWarning(r Reporter, code Code, primary source.Pos, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(SevWarning, code, primary, msg)}
}

func (b *ReportBuilder) WithNote(pos source.Pos, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithNote(pos, msg)
	}
	return b
}

// Emit reports the diagnostic; later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b == nil || b.done {
		return
	}
	b.done = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}
