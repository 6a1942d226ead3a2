package table

import (
	"github.com/ember-lang/ember/pkg/object"
	"github.com/ember-lang/ember/pkg/value"
)

// Strings is the VM's string-interning pool: an open-addressed
// set-of-strings (spec.md §3's "strings intern pool") used solely to
// canonicalize content. It's built on the same Table the globals table
// uses, storing a throwaway Bool(true) value.Value per key and recovering
// the owning *object.String through a side map keyed by the Key pointer
// embedded in the table (Key doesn't carry a back-reference to the
// object.String that allocated it, so Strings keeps that mapping itself).
type Strings struct {
	t      *Table
	owners map[*Key]*object.String
}

// NewStrings returns an empty string-interning pool.
func NewStrings() *Strings {
	return &Strings{t: New(), owners: make(map[*Key]*object.String)}
}

// Intern returns the canonical *object.String for chars: if an
// equal-content string was interned before, that exact object is
// returned; otherwise a new one is allocated, recorded, and returned.
// Two calls with equal content always return the identical pointer,
// which is what makes value.Equal on two String values a pointer
// comparison.
func (s *Strings) Intern(chars string) *object.String {
	hash := object.HashString(chars)
	if k := s.t.FindString(chars, hash); k != nil {
		return s.owners[k]
	}
	str := object.NewString(chars)
	key := &Key{Chars: str.Chars, Hash: str.Hash}
	s.t.Set(key, value.TrueValue)
	s.owners[key] = str
	return str
}
