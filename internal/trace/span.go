package trace

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"decaf/internal/source"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// Span is an open interval of work. The zero Span is inert.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
	token   uint64 // inflight registration, 0 if none
}

func emits(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

// Begin starts a span under parent (0 for a top-level span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !emits(t, scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Seq:      NextSeq(),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// BeginFile starts the span of one document. While it is open, path is
// listed by InFlight and named by heartbeats, even at levels that do not
// record file spans.
func BeginFile(t Tracer, path string, parent uint64) *Span {
	s := Begin(t, ScopeFile, "check", parent).WithExtra("file", path)
	if t != nil && t.Enabled() {
		s.token = inflight.add(path)
	}
	return s
}

// End closes the span and returns its duration; 0 for an inert span.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	if s.token != 0 {
		inflight.remove(s.token)
		s.token = 0
	}
	if s.tracer == nil {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(&Event{
		Time:     now,
		Seq:      NextSeq(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return now.Sub(s.started)
}

// WithExtra attaches a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !emits(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}

// At emits a node event located at pos. Callers building detail strings
// should check Level().ShouldEmit(ScopeNode) first.
func At(t Tracer, pos source.Pos, name, detail string, parent uint64) {
	if !emits(t, ScopeNode) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    ScopeNode,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
		Pos:      pos,
	})
}

// inflightSet tracks open file spans for heartbeats.
type inflightSet struct {
	mu    sync.Mutex
	next  uint64
	files map[uint64]string
}

var inflight = inflightSet{files: make(map[uint64]string)}

func (s *inflightSet) add(path string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.files[s.next] = path
	return s.next
}

func (s *inflightSet) remove(token uint64) {
	s.mu.Lock()
	delete(s.files, token)
	s.mu.Unlock()
}

// InFlight lists the documents whose file span is open, sorted.
func InFlight() []string {
	inflight.mu.Lock()
	out := make([]string, 0, len(inflight.files))
	for _, path := range inflight.files {
		out = append(out, path)
	}
	inflight.mu.Unlock()
	slices.Sort(out)
	return out
}
