// Package xslices provides generic slice and map helpers used across the
// repository, mostly to iterate maps in a deterministic order.
package xslices

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Keys returns the keys of a map in arbitrary order.
func Keys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// SortedKeys returns the keys of a map in sorted order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := Keys(m)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Map applies fn to each element of in and returns the resulting slice.
func Map[In, Out any](in []In, fn func(In) Out) []Out {
	out := make([]Out, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
