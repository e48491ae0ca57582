package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Validate walks the arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	// Stack: retained, open, strictly nested.
	prev := NoScopeID
	for depth, id := range t.stack {
		if !id.IsValid() || int(id) >= len(t.scopes) {
			errs = append(errs, fmt.Errorf("stack frame %d references unknown scope %d", depth, id))
			continue
		}
		m := t.scopes[id]
		if m.Closed {
			errs = append(errs, fmt.Errorf("stack frame %d references closed scope %d", depth, id))
		}
		if m.Depth != depth+1 {
			errs = append(errs, fmt.Errorf("scope %d opened at depth %d sits at depth %d", id, m.Depth, depth+1))
		}
		if id <= prev {
			errs = append(errs, fmt.Errorf("scope %d is stacked above newer scope %d", id, prev))
		}
		prev = id
	}

	// Bucket chains: terminate, hash to their bucket, belong to their scope.
	seen := make(map[EntryID]ScopeID, len(t.entries))
	for idx := 1; idx < len(t.scopes); idx++ {
		scopeID, err := toScopeID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m := t.scopes[idx]
		count := 0
		for b := range m.Buckets {
			for id := m.Buckets[b]; id.IsValid(); id = t.entries[id].Next {
				if int(id) >= len(t.entries) {
					errs = append(errs, fmt.Errorf("scope %d bucket %d references missing entry %d", scopeID, b, id))
					break
				}
				if owner, dup := seen[id]; dup {
					errs = append(errs, fmt.Errorf("entry %d reachable from scope %d and scope %d", id, owner, scopeID))
					break
				}
				seen[id] = scopeID
				entry := t.entries[id]
				if bucketOf(entry.Name) != b {
					errs = append(errs, fmt.Errorf("entry %q sits in bucket %d, hashes to %d", entry.Name, b, bucketOf(entry.Name)))
				}
				if entry.Scope != scopeID {
					errs = append(errs, fmt.Errorf("entry %q claims scope %d, found in %d", entry.Name, entry.Scope, scopeID))
				}
				count++
			}
		}
		if count != m.Len {
			errs = append(errs, fmt.Errorf("scope %d holds %d entries, records %d", scopeID, count, m.Len))
		}
	}
	if len(seen) != len(t.entries)-1 {
		errs = append(errs, fmt.Errorf("%d entries allocated, %d reachable", len(t.entries)-1, len(seen)))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func toScopeID(idx int) (ScopeID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoScopeID, fmt.Errorf("scope index %d overflow: %w", idx, err)
	}
	return ScopeID(value), nil
}
