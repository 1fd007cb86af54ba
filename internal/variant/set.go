// Package variant evaluates which state variants (hover, disabled, custom
// attribute predicates) are active for an element.
package variant

import (
	"slices"
	"strings"
)

// Set is an immutable, sorted set of variant names. The zero value is the
// empty set.
type Set struct {
	names []string
}

// NewSet builds a set from names, dropping blanks and duplicates.
func NewSet(names ...string) Set {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return Set{names: slices.Compact(out)}
}

// Names returns the sorted names.
func (s Set) Names() []string { return slices.Clone(s.names) }

// Len returns the number of variants.
func (s Set) Len() int { return len(s.names) }

// Empty reports whether the set has no variants.
func (s Set) Empty() bool { return len(s.names) == 0 }

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool {
	_, found := slices.BinarySearch(s.names, name)
	return found
}

// SubsetOf reports whether every variant of s is in other.
func (s Set) SubsetOf(other Set) bool {
	for _, n := range s.names {
		if !other.Contains(n) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same names.
func (s Set) Equal(other Set) bool { return slices.Equal(s.names, other.names) }

// Union returns a new set with the names of both sets.
func (s Set) Union(other Set) Set {
	return NewSet(append(slices.Clone(s.names), other.names...)...)
}

// Key is a canonical string form usable as a map or cache key.
func (s Set) Key() string { return strings.Join(s.names, "+") }

func (s Set) String() string {
	if s.Empty() {
		return "{}"
	}
	return "{" + strings.Join(s.names, ", ") + "}"
}
