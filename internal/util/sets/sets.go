// Package sets holds the small collection helpers the compiler passes share:
// a generic hash set and deterministic key ordering for maps.
package sets

import (
	"cmp"
	"slices"
)

// Set is a simple generic hash set for comparable keys.
// Usage: s := sets.New("a", "b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// With returns a copy of s that also contains v; s is left untouched so
// recursive callers can branch their visited sets.
func (s Set[T]) With(v T) Set[T] {
	out := make(Set[T], len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[v] = struct{}{}
	return out
}

// SortedKeys returns the keys of m in ascending order. Every pass iterates
// maps through this so output never depends on Go's map ordering.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
