package diag

import "decaf/internal/source"

// DedupReporter forwards each distinct (code, severity, position, message)
// once. Notes do not take part in the comparison.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]bool
}

type dedupKey struct {
	code Code
	sev  Severity
	at   source.Pos
	msg  string
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: map[dedupKey]bool{}}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := dedupKey{d.Code, d.Severity, d.Primary, d.Message}
	if r == nil || r.seen[key] {
		return
	}
	r.seen[key] = true
	if r.next != nil {
		r.next.Report(d)
	}
}
