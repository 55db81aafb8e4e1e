package object

import "github.com/wisplang/wisp/pkg/value"

const tableMaxLoad = 0.75

type entry struct {
	key   *String // nil key with present still true marks a deleted slot (tombstone)
	value value.Value
	present bool
}

// Table is an open-addressed (linear probing) hash map from *String to
// Value, used for globals, class method tables, and instance field tables.
// Capacity is always a power of two; Entries()/Keys() skip tombstones.
type Table struct {
	count   int // live entries + tombstones
	entries []entry
}

// NewTable returns an empty table.
func NewTable() *Table { return &Table{} }

// Get looks up key, returning (value, true) if present.
func (t *Table) Get(key *String) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil, false
	}
	e := t.find(key)
	if e.key == nil {
		return value.Nil, false
	}
	return e.value, true
}

// Set inserts or overwrites key => v, growing the table if the load factor
// would exceed 0.75. Returns true if this created a new entry.
func (t *Table) Set(key *String, v value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow()
	}
	e := t.find(key)
	isNew := e.key == nil
	if isNew && !e.present {
		t.count++
	}
	e.key = key
	e.value = v
	e.present = true
	return isNew
}

// Delete removes key, leaving a tombstone so later probe chains survive.
func (t *Table) Delete(key *String) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = value.Bool(true)
	return true
}

// Keys returns all live (non-tombstone) keys, used by the GC's weak sweep of
// the intern table.
func (t *Table) Keys() []*String {
	keys := make([]*String, 0, t.count)
	for i := range t.entries {
		if t.entries[i].present && t.entries[i].key != nil {
			keys = append(keys, t.entries[i].key)
		}
	}
	return keys
}

// Entries returns all live key/value pairs.
func (t *Table) Entries() map[*String]value.Value {
	out := make(map[*String]value.Value, t.count)
	for i := range t.entries {
		if t.entries[i].present && t.entries[i].key != nil {
			out[t.entries[i].key] = t.entries[i].value
		}
	}
	return out
}

// CopyInto copies every live entry from t into dst, used by OP_INHERIT to
// copy a superclass's method table into a subclass's.
func (t *Table) CopyInto(dst *Table) {
	for i := range t.entries {
		if t.entries[i].present && t.entries[i].key != nil {
			dst.Set(t.entries[i].key, t.entries[i].value)
		}
	}
}

// FindInterned probes for a string equal to chars without constructing a
// *String, used by the intern table to decide whether to allocate.
func (t *Table) FindInterned(chars string, hash uint32) *String {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	index := hash & mask
	for {
		e := &t.entries[index]
		if e.key == nil {
			if !e.present {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) & mask
	}
}

func (t *Table) find(key *String) *entry {
	mask := uint32(len(t.entries) - 1)
	index := key.Hash & mask
	var tombstone *entry
	for {
		e := &t.entries[index]
		if e.key == nil {
			if !e.present {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) & mask
	}
}

func (t *Table) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]entry, newCap)
	t.count = 0
	for i := range old {
		if old[i].present && old[i].key != nil {
			e := t.find(old[i].key)
			e.key = old[i].key
			e.value = old[i].value
			e.present = true
			t.count++
		}
	}
}
