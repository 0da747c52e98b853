// Package jsonld extracts JSON-LD objects from HTML documents and filters
// them by their Schema.org type.
//
// The pipeline has three stages, each producing a lazy [iter.Seq]:
//  1. [Locate] finds every <script type="application/ld+json"> element and
//     parses its text (malformed scripts are skipped).
//  2. [Flatten] unwraps @graph containers and plain arrays into a flat
//     sequence of @type-bearing objects.
//  3. [Filter] keeps the objects whose @type matches one of the requested
//     names and whose @context identifies Schema.org.
//
// [Objects] and [ValueObjects] compose the stages. Nothing in this package
// performs I/O, logs, or mutates its input.
package jsonld

import (
	"bytes"
	"errors"
	"fmt"
	"iter"

	json "github.com/goccy/go-json"
)

// Kind is the kind of a JSON value.
type Kind uint8

const (
	// Invalid is the kind of the zero Value.
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// JSON-LD keywords read by this package.
const (
	KeyContext = "@context"
	KeyType    = "@type"
	KeyGraph   = "@graph"
)

// ErrEmptyScript is returned when parsing blank text.
var ErrEmptyScript = errors.New("empty JSON-LD text")

// Value is a read-only view over a decoded JSON value.
//
// A Value produced by [Flatten] from inside a @graph container also carries
// the container's @context, returned by [Value.Context] when the object has
// no @context of its own. The underlying data is never modified.
type Value struct {
	raw       any
	kind      Kind
	inherited string
}

// FromAny wraps a value decoded by encoding/json (or a compatible decoder):
// map[string]any, []any, string, float64, json.Number, bool or nil.
// Other Go types, typed containers such as []map[string]any included,
// produce an Invalid value that [Flatten] yields nothing for.
func FromAny(v any) Value {
	return Value{raw: v, kind: kindOf(v)}
}

// Parse decodes a single JSON document.
func Parse(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Value{}, ErrEmptyScript
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, fmt.Errorf("decoding JSON-LD: %w", err)
	}
	return FromAny(v), nil
}

// ParseString is [Parse] for a string.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

func kindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case float64, json.Number:
		return Number
	case string:
		return String
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Invalid
	}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether v holds a JSON value.
func (v Value) IsValid() bool {
	return v.kind != Invalid
}

// Raw returns the underlying decoded value.
func (v Value) Raw() any {
	return v.raw
}

// Str returns the string payload of a String value.
func (v Value) Str() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// Has reports whether an object value has the given property.
func (v Value) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

// Get returns the named property of an object value.
func (v Value) Get(name string) (Value, bool) {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}, false
	}
	p, ok := m[name]
	if !ok {
		return Value{}, false
	}
	return FromAny(p), true
}

// Elements iterates over the elements of an array value.
// It yields nothing for other kinds.
func (v Value) Elements() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		a, ok := v.raw.([]any)
		if !ok {
			return
		}
		for _, x := range a {
			if !yield(FromAny(x)) {
				return
			}
		}
	}
}

// Len returns the number of elements of an array or properties of an object.
func (v Value) Len() int {
	switch t := v.raw.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	}
	return 0
}

// Type returns the @type property when it is a single string.
func (v Value) Type() (string, bool) {
	p, ok := v.Get(KeyType)
	if !ok {
		return "", false
	}
	return p.Str()
}

// Types returns every string found in @type, whether it holds a single
// string or an array.
func (v Value) Types() []string {
	p, ok := v.Get(KeyType)
	if !ok {
		return nil
	}

	switch t := p.raw.(type) {
	case string:
		return []string{t}
	case []any:
		res := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	return nil
}

// Context returns the object's own string @context or, when it has none,
// the context inherited from its enclosing @graph container.
func (v Value) Context() string {
	if p, ok := v.Get(KeyContext); ok {
		s, _ := p.Str()
		return s
	}
	return v.inherited
}

// withContext returns a copy of v inheriting ctx.
func (v Value) withContext(ctx string) Value {
	v.inherited = ctx
	return v
}

// MarshalJSON encodes the underlying value.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == Invalid {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// MarshalYAML returns the underlying value for YAML encoders.
func (v Value) MarshalYAML() (any, error) {
	return v.raw, nil
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.kind, err)
	}
	return string(b)
}
