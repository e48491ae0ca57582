package source

import "slices"

// StringID identifies an interned string. NoStringID maps to "".
type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates strings; the packed tree format stores one string
// table per document and refers to names by StringID.
type Interner struct {
	byID  []string            // byID[0] = "" для NoStringID
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// FromTable rebuilds an interner from a previously snapshotted table.
// The first entry must be the empty string.
func FromTable(table []string) *Interner {
	in := NewInterner()
	for i, s := range table {
		if i == 0 {
			continue
		}
		in.Intern(s)
	}
	return in
}

// Intern returns the ID of s, adding it on first sight.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	id := StringID(len(i.byID))
	i.byID = append(i.byID, s)
	i.index[s] = id
	return id
}

// Lookup returns the string for id, or false if id was never issued.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup паникует на невалидном ID.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Len counts NoStringID too, so it is never below 1.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of the table, index = StringID.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
