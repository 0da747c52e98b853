package jsonld

import (
	"iter"
	"slices"
)

// Filter keeps the values of seq that are Schema.org objects of any of the
// given types, in order. Without types, seq is returned unchanged.
func Filter(seq iter.Seq[Value], types ...string) iter.Seq[Value] {
	if len(types) == 0 {
		return seq
	}
	types = slices.Clone(types)

	return func(yield func(Value) bool) {
		for v := range seq {
			if !IsSchemaOrgObjectOfAnyType(v, types...) {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Materialize drains seq into a slice, keeping its order.
// The result is never nil.
func Materialize[T any](seq iter.Seq[T]) []T {
	res := []T{}
	for v := range seq {
		res = append(res, v)
	}
	return res
}
