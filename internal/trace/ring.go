package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N events in memory. The driver dumps it into
// the report of an internal error.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	head   int  // next write position
	full   bool // has wrapped around
	level  Level
}

// NewRingTracer keeps capacity events (4096 when capacity <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.accepts(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events[t.head] = *ev
	t.head = (t.head + 1) % len(t.events)
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]Event(nil), t.events[:t.head]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.head:]...)
	return append(out, t.events[:t.head]...)
}

// Dump writes every stored event.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	return t.DumpSpan(w, format, 0)
}

// DumpSpan writes the events of span root and of everything nested in it,
// so the dump for one file of a parallel run leaves the other files out.
// root 0 selects all events.
func (t *RingTracer) DumpSpan(w io.Writer, format Format, root uint64) error {
	if format == FormatAuto {
		format = FormatText
	}
	keep := map[uint64]bool{root: true}
	for _, ev := range t.Snapshot() {
		if root != 0 && !keep[ev.SpanID] && !keep[ev.ParentID] {
			continue
		}
		if ev.SpanID != 0 {
			keep[ev.SpanID] = true
		}
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
