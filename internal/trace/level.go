package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // nothing live; the ring is dumped after a crash
	LevelPhase               // driver and pass boundaries
	LevelDetail              // plus per-file spans
	LevelDebug               // plus tree nodes
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest scope emitted at each level
var levelScopes = [...]Scope{LevelPhase: ScopePass, LevelDetail: ScopeFile, LevelDebug: ScopeNode}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(s)
	for i, candidate := range levelNames {
		if candidate == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(levelScopes) && scope != 0 && scope <= levelScopes[l]
}

// accepts is the filter every sink applies; heartbeats pass at any level.
func (l Level) accepts(ev *Event) bool {
	return ev.Kind == KindHeartbeat || l.ShouldEmit(ev.Scope)
}
