package jsonld

import (
	"slices"
	"strings"
)

// schemaOrgContexts are the @context values identifying Schema.org data.
var schemaOrgContexts = []string{
	"http://schema.org",
	"http://schema.org/",
	"https://schema.org",
	"https://schema.org/",
}

// IsSchemaOrgContext reports whether ctx identifies Schema.org, ignoring case.
func IsSchemaOrgContext(ctx string) bool {
	return slices.ContainsFunc(schemaOrgContexts, func(s string) bool {
		return strings.EqualFold(s, ctx)
	})
}

// IsSchemaOrg reports whether v is an object whose own or inherited
// @context identifies Schema.org.
func IsSchemaOrg(v Value) bool {
	return v.Kind() == Object && IsSchemaOrgContext(v.Context())
}

// IsSchemaOrgObjectOfType reports whether v is Schema.org data with a @type
// equal to typ, ignoring case. Case is folded one character at a time with
// no locale, so "Straße" does not match "STRASSE". When @type is an array,
// any of its strings may match.
func IsSchemaOrgObjectOfType(v Value, typ string) bool {
	return IsSchemaOrgObjectOfAnyType(v, typ)
}

// IsSchemaOrgObjectOfAnyType is [IsSchemaOrgObjectOfType] for several
// candidate types; v matches if any of them matches.
func IsSchemaOrgObjectOfAnyType(v Value, types ...string) bool {
	if len(types) == 0 || !IsSchemaOrg(v) {
		return false
	}

	for _, t := range v.Types() {
		for _, want := range types {
			if strings.EqualFold(t, want) {
				return true
			}
		}
	}
	return false
}
