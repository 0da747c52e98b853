package jsonld

import (
	"iter"

	"github.com/PuerkitoBio/goquery"
)

// Objects returns the JSON-LD objects of every script in doc, flattened and,
// when types are given, filtered by Schema.org type.
func Objects(doc *goquery.Document, types ...string) iter.Seq[Value] {
	return ObjectsWith(doc, nil, types...)
}

// ObjectsWith is [Objects] with [Locate] options.
func ObjectsWith(doc *goquery.Document, opts []Option, types ...string) iter.Seq[Value] {
	scripts := Locate(doc, opts...)
	all := func(yield func(Value) bool) {
		for v := range scripts {
			for o := range Flatten(v) {
				if !yield(o) {
					return
				}
			}
		}
	}
	return Filter(all, types...)
}

// ValueObjects flattens v and, when types are given, filters the result by
// Schema.org type. v can come from anywhere, an API response for instance.
func ValueObjects(v Value, types ...string) iter.Seq[Value] {
	return Filter(Flatten(v), types...)
}
