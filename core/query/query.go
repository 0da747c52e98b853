// Package query implements the Querier interface with jq expressions.
// The expression runs once per object; every value it emits is collected.
package query

import (
	"errors"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/gaurav-prasanna/ldpipe/core/jsonld"
)

// JQQuerier runs a compiled jq program against extracted objects.
type JQQuerier struct {
	src  string
	code *gojq.Code
}

// New compiles a jq expression.
func New(expr string) (*JQQuerier, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing query %q: %w", expr, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compiling query %q: %w", expr, err)
	}
	return &JQQuerier{src: expr, code: code}, nil
}

// Query runs the program on each object, in order.
func (q *JQQuerier) Query(objects []jsonld.Value) ([]any, error) {
	res := []any{}
	for i, o := range objects {
		it := q.code.Run(o.Raw())
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			if err, ok := v.(error); ok {
				var haltErr *gojq.HaltError
				if errors.As(err, &haltErr) && haltErr.Value() == nil {
					break
				}
				return nil, fmt.Errorf("running query %q on object %d: %w", q.src, i, err)
			}
			res = append(res, v)
		}
	}
	return res, nil
}
