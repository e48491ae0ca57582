package symbols

// ScopeID identifies a scope map in the table's retention arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// EntryID identifies a symbol entry in the table's entry arena.
type EntryID uint32

const (
	// NoEntryID terminates a bucket chain.
	NoEntryID EntryID = 0
)

// IsValid reports whether the entry ID refers to an allocated entry.
func (id EntryID) IsValid() bool { return id != NoEntryID }
