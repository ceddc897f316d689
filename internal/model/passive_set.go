package model

import "github.com/udisondev/jabs/internal/data"

// PassiveSet is the resolved set of passive states.
// Unique ids appear once; stackable ids once per declaring occurrence.
// Always replaced wholesale by the resolver, never patched.
type PassiveSet struct {
	unique    []data.StateID
	stackable []data.StateID
}

// NewPassiveSet builds a set from already-resolved lists.
func NewPassiveSet(unique, stackable []data.StateID) PassiveSet {
	return PassiveSet{unique: unique, stackable: stackable}
}

// IDs returns unique ids followed by stackable ids (with repetitions).
func (s PassiveSet) IDs() []data.StateID {
	out := make([]data.StateID, 0, len(s.unique)+len(s.stackable))
	out = append(out, s.unique...)
	return append(out, s.stackable...)
}

// Unique returns a copy of the unique ids.
func (s PassiveSet) Unique() []data.StateID {
	return append([]data.StateID(nil), s.unique...)
}

// Stackable returns a copy of the stackable ids.
func (s PassiveSet) Stackable() []data.StateID {
	return append([]data.StateID(nil), s.stackable...)
}

// Len returns |unique| + |stackable|.
func (s PassiveSet) Len() int {
	return len(s.unique) + len(s.stackable)
}

// Count returns how many instances of id the set holds.
func (s PassiveSet) Count(id data.StateID) int {
	n := 0
	for _, u := range s.unique {
		if u == id {
			n++
		}
	}
	for _, st := range s.stackable {
		if st == id {
			n++
		}
	}
	return n
}

// Contains reports whether the set holds at least one instance of id.
func (s PassiveSet) Contains(id data.StateID) bool {
	return s.Count(id) > 0
}
