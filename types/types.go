// Package types holds the small types shared across the expression packages:
// the Manifold interface implemented by every value an expression can
// produce, and a generic Set used for key collections.
package types

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Manifold is the contract a value type must fulfill to flow through an
// expression graph: it reports its tangent-space dimension, compares itself
// to another value within a tolerance and prints itself.
//
// Retraction and local coordinates are deliberately not part of the
// interface: evaluation never needs them.
type Manifold interface {
	// Dim is the dimension of the value's tangent space, i.e. the number of
	// columns of any Jacobian taken with respect to this value.
	Dim() int

	// Equals reports whether other holds the same value, component-wise
	// within tol. It returns false when other is of a different concrete type.
	Equals(other Manifold, tol float64) bool

	// String returns a human-readable rendering of the value.
	String() string
}

// Set implements a set of the comparable type T.
type Set[T comparable] map[T]struct{}

// MakeSet returns an empty Set with the given capacity reserved, if provided.
func MakeSet[T comparable](size ...int) Set[T] {
	if len(size) == 0 {
		return make(Set[T])
	}
	return make(Set[T], size[0])
}

// Has returns true if the set contains key.
func (s Set[T]) Has(key T) bool {
	_, found := s[key]
	return found
}

// Insert keys into the set.
func (s Set[T]) Insert(keys ...T) {
	for _, key := range keys {
		s[key] = struct{}{}
	}
}

// Sub returns `s - s2`: the elements of s not in s2.
func (s Set[T]) Sub(s2 Set[T]) Set[T] {
	sub := MakeSet[T]()
	for k := range s {
		if !s2.Has(k) {
			sub.Insert(k)
		}
	}
	return sub
}

// Sorted returns the elements of the set in increasing order.
//
// It is a free function instead of a method because it needs the stronger
// constraints.Ordered constraint on T.
func Sorted[T constraints.Ordered](s Set[T]) []T {
	elements := make([]T, 0, len(s))
	for k := range s {
		elements = append(elements, k)
	}
	sort.Slice(elements, func(i, j int) bool { return elements[i] < elements[j] })
	return elements
}
