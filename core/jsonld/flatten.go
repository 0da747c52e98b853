package jsonld

import (
	"fmt"
	"iter"
)

// Flatten returns the JSON-LD objects found in v, depth first and in source
// order:
//   - a Schema.org object with an @graph array yields the objects of each
//     graph entry; entries without their own @context inherit the
//     container's,
//   - an array yields the objects of each element,
//   - anything else carrying a string @type (or an @type array with at least
//     one string) is yielded as is.
//
// Other values, unsupported ones from [FromAny] included, yield nothing.
// Flatten panics if v is the zero Value.
func Flatten(v Value) iter.Seq[Value] {
	if !v.IsValid() && v.raw == nil {
		panic(fmt.Errorf("%w: flatten of the zero value", ErrInvalidArgument))
	}

	return func(yield func(Value) bool) {
		flatten(v, yield)
	}
}

// flatten returns false when the consumer stopped.
func flatten(v Value, yield func(Value) bool) bool {
	if graph, ok := graphOf(v); ok {
		ctx := v.Context()
		for e := range graph.Elements() {
			if !flatten(e.withContext(ctx), yield) {
				return false
			}
		}
		return true
	}

	if v.Kind() == Array {
		for e := range v.Elements() {
			if !flatten(e.withContext(v.inherited), yield) {
				return false
			}
		}
		return true
	}

	if len(v.Types()) > 0 {
		return yield(v)
	}
	return true
}

// graphOf returns the @graph array of a Schema.org graph container.
func graphOf(v Value) (Value, bool) {
	if !IsSchemaOrg(v) {
		return Value{}, false
	}
	g, ok := v.Get(KeyGraph)
	if !ok || g.Kind() != Array {
		return Value{}, false
	}
	return g, true
}
