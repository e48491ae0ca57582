package symbols

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"

	"decaf/internal/types"
)

// ErrBadPointer reports an operation on a table with no open scope.
var ErrBadPointer = errors.New("bad pointer: no open scope")

// Hints provide optional capacity suggestions for the table arenas.
type Hints struct{ Scopes, Entries uint }

// Table keeps two views of the same scope maps:
//
//   - scopes is the retention arena. Every map ever created stays here until
//     Destroy, whether or not it is still visible.
//   - stack holds handles of the scopes that currently enclose the cursor.
//     Only the stack is consulted by ExistsLocal and Lookup.
//
// EndScope pops a handle and never frees; Destroy frees everything once.
type Table struct {
	scopes  []ScopeMap // index 0 reserved for NoScopeID
	entries []Entry    // index 0 reserved for NoEntryID
	stack   []ScopeID
	hints   Hints
}

// NewTable builds an empty table with no open scope.
func NewTable(h Hints) *Table {
	t := &Table{hints: h}
	t.reset()
	return t
}

func (t *Table) reset() {
	scopeCap, entryCap := t.hints.Scopes, t.hints.Entries
	if scopeCap == 0 {
		scopeCap = 16
	}
	if entryCap == 0 {
		entryCap = 64
	}
	t.scopes = make([]ScopeMap, 1, scopeCap+1)
	t.entries = make([]Entry, 1, entryCap+1)
	t.stack = make([]ScopeID, 0, 8)
}

// BeginScope allocates a fresh scope map, retains it and pushes it.
func (t *Table) BeginScope() ScopeID {
	value, err := safecast.Conv[uint32](len(t.scopes))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(value)
	t.scopes = append(t.scopes, ScopeMap{Depth: len(t.stack) + 1})
	t.stack = append(t.stack, id)
	return id
}

// EndScope pops the innermost scope. The map stays retained.
func (t *Table) EndScope() error {
	if len(t.stack) == 0 {
		return fmt.Errorf("end scope: %w", ErrBadPointer)
	}
	top := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.scopes[top].Closed = true
	return nil
}

// Current returns the innermost open scope or NoScopeID.
func (t *Table) Current() ScopeID {
	if len(t.stack) == 0 {
		return NoScopeID
	}
	return t.stack[len(t.stack)-1]
}

// Depth is the number of open scopes.
func (t *Table) Depth() int { return len(t.stack) }

// ScopeCount is the number of scope maps ever created and not yet destroyed.
func (t *Table) ScopeCount() int { return len(t.scopes) - 1 }

// EntryCount is the number of entries ever inserted and not yet destroyed.
func (t *Table) EntryCount() int { return len(t.entries) - 1 }

// ExistsLocal reports whether name is declared in the innermost open scope.
// With no open scope it is simply false.
func (t *Table) ExistsLocal(name string) bool {
	scope := t.Current()
	if !scope.IsValid() {
		return false
	}
	_, ok := t.findIn(scope, name)
	return ok
}

// Lookup returns the nearest declaration of name, innermost scope first.
func (t *Table) Lookup(name string) (Entry, bool) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if id, ok := t.findIn(t.stack[i], name); ok {
			return t.entries[id], true
		}
	}
	return Entry{}, false
}

// Insert prepends an entry to its bucket in the innermost open scope. It does
// not check for duplicates: a second insert of the same name shadows the
// first within the scope, so callers check ExistsLocal first.
func (t *Table) Insert(name string, ty types.Type, flags Flags) error {
	scope := t.Current()
	if !scope.IsValid() {
		return fmt.Errorf("insert %q: %w", name, ErrBadPointer)
	}
	value, err := safecast.Conv[uint32](len(t.entries))
	if err != nil {
		panic(fmt.Errorf("entries arena overflow: %w", err))
	}
	id := EntryID(value)
	m := &t.scopes[scope]
	bucket := bucketOf(name)
	t.entries = append(t.entries, Entry{
		Name:  name,
		Type:  ty,
		Flags: flags,
		Scope: scope,
		Next:  m.Buckets[bucket],
	})
	m.Buckets[bucket] = id
	m.Len++
	return nil
}

func (t *Table) findIn(scope ScopeID, name string) (EntryID, bool) {
	m := &t.scopes[scope]
	for id := m.Buckets[bucketOf(name)]; id.IsValid(); id = t.entries[id].Next {
		if t.entries[id].Name == name {
			return id, true
		}
	}
	return NoEntryID, false
}

// DestroyStats reports what Destroy released.
type DestroyStats struct {
	Scopes  int
	Entries int
	Frames  int
}

// Destroy walks the retention arena releasing every scope map and its entries
// exactly once, then drops the remaining stack frames. Open scopes are fine.
// The table is empty and reusable afterwards.
func (t *Table) Destroy() DestroyStats {
	var stats DestroyStats
	for idx := 1; idx < len(t.scopes); idx++ {
		m := &t.scopes[idx]
		for b := range m.Buckets {
			for id := m.Buckets[b]; id.IsValid(); {
				next := t.entries[id].Next
				t.entries[id] = Entry{}
				stats.Entries++
				id = next
			}
			m.Buckets[b] = NoEntryID
		}
		stats.Scopes++
	}
	stats.Frames = len(t.stack)
	t.reset()
	return stats
}

// Dump writes the visible scopes, innermost first, for debugging.
func (t *Table) Dump(w io.Writer) error {
	for i := len(t.stack) - 1; i >= 0; i-- {
		id := t.stack[i]
		m := &t.scopes[id]
		if _, err := fmt.Fprintf(w, "scope #%d (depth %d, %d symbols)\n", id, m.Depth, m.Len); err != nil {
			return err
		}
		for b := range m.Buckets {
			for e := m.Buckets[b]; e.IsValid(); e = t.entries[e].Next {
				entry := t.entries[e]
				flags := ""
				if labels := entry.Flags.Strings(); len(labels) > 0 {
					flags = " [" + strings.Join(labels, ",") + "]"
				}
				if _, err := fmt.Fprintf(w, "  %s: %s%s\n", entry.Name, entry.Type, flags); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
