package trace

import (
	"time"

	"decaf/internal/source"
)

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // instant event
	KindHeartbeat // periodic liveness signal
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers a whole run (check-dir, heartbeats).
	ScopeDriver Scope = iota + 1
	// ScopePass covers one analyzer pass.
	ScopePass
	// ScopeFile covers checking one document.
	ScopeFile
	ScopeNode // scope open/close and folds on single tree nodes
)

var scopeNames = [...]string{"unknown", "driver", "pass", "file", "node"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned once, at creation
	Kind     Kind
	Scope    Scope
	SpanID   uint64 // 0 for points and heartbeats
	ParentID uint64 // enclosing span, 0 at the top
	Name     string // "check", "sema", "scope.open", "fold", ...
	Detail   string
	Pos      source.Pos // node events: where in the tree document
	Extra    map[string]string
}
