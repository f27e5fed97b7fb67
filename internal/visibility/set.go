package visibility

import (
	"sort"
)

// Set is a set of tree node ids
type Set map[string]struct{}

// NewSet creates a set holding ids
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Remove deletes id
func (s Set) Remove(id string) {
	delete(s, id)
}

// Len returns the number of ids
func (s Set) Len() int {
	return len(s)
}

// IDs returns the ids in sorted order
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same ids
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}
