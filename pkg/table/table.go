// Package table implements an open-addressed hash table keyed by interned
// strings, used both as Ember's globals table and as the VM's string
// interning pool.
//
// The design — linear probing, load factor 0.75, grow-by-doubling from an
// initial capacity of 8, and tombstone deletion — follows this
// specification's own table design exactly; no part of the example pack
// carries a from-scratch open-addressed table with tombstones (the
// teacher and its siblings all lean on Go's builtin map), so this package
// is grounded directly in the specification text rather than in borrowed
// source, and documented here as such (see DESIGN.md).
package table

import "github.com/ember-lang/ember/pkg/value"

const initialCapacity = 8
const maxLoadFactor = 0.75

// entry is one slot in the table's backing array.
type entry struct {
	key   *Key
	value value.Value
}

// Key is the minimal shape a table key needs: the interned bytes and
// their precomputed hash. Callers build one from a pkg/object.String's
// Chars and Hash fields.
type Key struct {
	Chars string
	Hash  uint32
}

// isTrueEmpty reports whether e is a true-empty slot (never occupied, or
// occupied then cleared to the "true empty" sentinel — as opposed to a
// tombstone, which also has key == nil but carries value Bool(true)).
func (e *entry) isTrueEmpty() bool {
	return e.key == nil && e.value.IsNil()
}

func (e *entry) isTombstone() bool {
	return e.key == nil && !e.value.IsNil()
}

// Table is an open-addressed hash map from interned string keys to
// value.Value, with tombstone-based deletion.
type Table struct {
	entries []entry
	count   int // occupied slots, including tombstones
	live    int // occupied slots excluding tombstones
}

// New returns an empty Table. The backing array is allocated lazily on
// first Set, matching the spec's "starting capacity 8" — an empty table
// never allocates.
func New() *Table {
	return &Table{}
}

// Len reports the number of live (non-tombstone) keys.
func (t *Table) Len() int { return t.live }

// findEntry implements spec.md §4.3's find_entry: scan from
// hash&(cap-1), return the first matching occupied slot, else the first
// tombstone seen, else the first true-empty (which terminates the scan).
func findEntry(entries []entry, key *Key) *entry {
	capacity := len(entries)
	index := key.Hash & uint32(capacity-1)
	var tombstone *entry
	for {
		e := &entries[index]
		if e.key == nil {
			if e.isTrueEmpty() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			// tombstone
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key.Chars == key.Chars {
			return e
		}
		index = (index + 1) & uint32(capacity-1)
	}
}

func (t *Table) grow(capacity int) {
	newEntries := make([]entry, capacity)
	t.live = 0
	for i := range t.entries {
		old := &t.entries[i]
		if old.key == nil {
			continue
		}
		dst := findEntry(newEntries, old.key)
		dst.key = old.key
		dst.value = old.value
		t.live++
	}
	t.entries = newEntries
	t.count = t.live
}

// Set inserts or overwrites key->val. Returns true iff key was not
// previously present, matching spec.md §4.3 (the VM relies on this in
// SetGlobal to detect assignment to an undefined global).
func (t *Table) Set(key *Key, val value.Value) bool {
	if len(t.entries) == 0 || float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		capacity := initialCapacity
		if len(t.entries) > 0 {
			capacity = len(t.entries) * 2
		}
		t.grow(capacity)
	}
	e := findEntry(t.entries, key)
	isNew := e.key == nil
	if isNew && e.isTrueEmpty() {
		t.count++
	}
	e.key = key
	e.value = val
	if isNew {
		t.live++
	}
	return isNew
}

// Get looks up key, returning (value, true) if present.
func (t *Table) Get(key *Key) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.NilValue, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return value.NilValue, false
	}
	return e.value, true
}

// Delete removes key, writing a tombstone in its place. Reports whether
// the key was present.
func (t *Table) Delete(key *Key) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = value.TrueValue
	t.live--
	return true
}

// FindString walks the probe sequence comparing raw bytes, used to
// canonicalize a freshly-scanned or freshly-concatenated string against
// any already-interned string with the same content. Returns nil if no
// match exists yet.
func (t *Table) FindString(chars string, hash uint32) *Key {
	if len(t.entries) == 0 {
		return nil
	}
	capacity := len(t.entries)
	index := hash & uint32(capacity-1)
	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.isTrueEmpty() {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) & uint32(capacity-1)
	}
}

// AddAll copies every live entry of src into t, used nowhere by the core
// VM path today but kept (as the spec's table design implies) for
// module-merging style bulk inserts and exercised by table_test.go.
func (t *Table) AddAll(src *Table) {
	for i := range src.entries {
		e := &src.entries[i]
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}
