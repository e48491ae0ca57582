package observ

import (
	"fmt"
	"strings"
	"time"
)

// Timer accumulates wall time per named stage. A stage tracked twice is
// summed. Not safe for concurrent use: every file gets its own timer and
// the directory run merges them.
type Timer struct {
	order []string
	spent map[string]time.Duration
	notes map[string]string
}

func NewTimer() *Timer {
	return &Timer{spent: map[string]time.Duration{}, notes: map[string]string{}}
}

func (t *Timer) add(name string, d time.Duration) {
	if _, seen := t.spent[name]; !seen {
		t.order = append(t.order, name)
	}
	t.spent[name] += d
}

// Track times fn under name. A failing fn leaves its error text as the
// stage note; the error itself is returned unchanged.
func (t *Timer) Track(name string, fn func() error) error {
	started := time.Now()
	err := fn()
	t.add(name, time.Since(started))
	if err != nil {
		t.notes[name] = err.Error()
	}
	return err
}

// Merge adds other's stages; new names go last.
func (t *Timer) Merge(other *Timer) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		t.add(name, other.spent[name])
	}
}

// PhaseReport is one stage in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" msgpack:"duration_ms"`
	Note       string  `json:"note,omitempty" msgpack:"note,omitempty"`
}

// Report is what gets cached, serialised and printed.
type Report struct {
	TotalMS float64       `json:"total_ms" msgpack:"total_ms"`
	Phases  []PhaseReport `json:"phases" msgpack:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, name := range t.order {
		d := t.spent[name]
		total += d
		r.Phases = append(r.Phases, PhaseReport{Name: name, DurationMS: millis(d), Note: t.notes[name]})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the report as the --timings table.
func (r Report) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
