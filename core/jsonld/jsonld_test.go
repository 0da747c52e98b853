package jsonld_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/ldpipe/core/jsonld"
)

const scenarioPage = `<!DOCTYPE html>
<html lang="en">
<head>
	<title>Acme Rocket</title>
	<script type="application/ld+json">
	{"@context": "https://schema.org", "@type": "Product", "name": "Rocket"}
	</script>
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "Product", "name": "Anvil"},
			{"@type": "Organization", "name": "Acme"}
		]
	}
	</script>
	<script type="application/ld+json">{"@context": "https://schema.org", "@type": </script>
	<script type="text/javascript">var x = {"@type": "Product"};</script>
</head>
<body><h1>Rocket</h1></body>
</html>`

func mustDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := jsonld.ParseHTML(src)
	require.NoError(t, err)
	return doc
}

func mustValue(t *testing.T, src string) jsonld.Value {
	t.Helper()
	v, err := jsonld.ParseString(src)
	require.NoError(t, err)
	return v
}

func names(values []jsonld.Value) []string {
	res := make([]string, len(values))
	for i, v := range values {
		if p, ok := v.Get("name"); ok {
			res[i], _ = p.Str()
		}
	}
	return res
}

func TestScenario(t *testing.T) {
	doc := mustDoc(t, scenarioPage)

	t.Run("locate", func(t *testing.T) {
		scripts := jsonld.Materialize(jsonld.Locate(doc))
		require.Len(t, scripts, 2)
		assert.Equal(t, jsonld.Object, scripts[0].Kind())
		assert.True(t, scripts[1].Has("@graph"))
	})

	t.Run("all objects", func(t *testing.T) {
		objects := jsonld.Materialize(jsonld.Objects(doc))
		require.Equal(t, []string{"Rocket", "Anvil", "Acme"}, names(objects))
	})

	t.Run("products", func(t *testing.T) {
		objects := jsonld.Materialize(jsonld.Objects(doc, "Product"))
		require.Equal(t, []string{"Rocket", "Anvil"}, names(objects))
	})

	t.Run("organizations", func(t *testing.T) {
		objects := jsonld.Materialize(jsonld.Objects(doc, "Organization"))
		require.Equal(t, []string{"Acme"}, names(objects))
	})

	t.Run("any of", func(t *testing.T) {
		objects := jsonld.Materialize(jsonld.Objects(doc, "organization", "PRODUCT"))
		require.Equal(t, []string{"Rocket", "Anvil", "Acme"}, names(objects))
	})
}

func TestLocate(t *testing.T) {
	t.Run("count and order", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("<html><head>")
		for _, n := range []string{"a", "b", "c", "d"} {
			b.WriteString(`<script type="application/ld+json">{"@type": "Thing", "name": "` + n + `"}</script>`)
		}
		b.WriteString("</head><body>")
		b.WriteString(`<script type="application/ld+json">[{"@type": "Thing", "name": "e"}]</script>`)
		b.WriteString("</body></html>")

		scripts := jsonld.Materialize(jsonld.Locate(mustDoc(t, b.String())))
		require.Len(t, scripts, 5)
		require.Equal(t, []string{"a", "b", "c", "d", ""}, names(scripts))
		require.Equal(t, jsonld.Array, scripts[4].Kind())
	})

	t.Run("no scripts", func(t *testing.T) {
		doc := mustDoc(t, "<html><body><p>nothing</p></body></html>")
		require.Empty(t, jsonld.Materialize(jsonld.Locate(doc)))
		require.NotNil(t, jsonld.Materialize(jsonld.Locate(doc)))
	})

	t.Run("skip handler", func(t *testing.T) {
		doc := mustDoc(t, `<html><head>
			<script type="application/ld+json">{"@type": "Thing"}</script>
			<script type="application/ld+json">   </script>
			<script type="application/ld+json">{nope}</script>
			<script type="application/ld+json">{"@type": "Place"}</script>
		</head></html>`)

		var skipped []*jsonld.ScriptError
		scripts := jsonld.Materialize(jsonld.Locate(doc, jsonld.WithSkipHandler(func(e *jsonld.ScriptError) {
			skipped = append(skipped, e)
		})))

		require.Len(t, scripts, 2)
		require.Len(t, skipped, 2)
		assert.Equal(t, 1, skipped[0].Index)
		assert.ErrorIs(t, skipped[0], jsonld.ErrEmptyScript)
		assert.Equal(t, 2, skipped[1].Index)
		assert.Contains(t, skipped[1].Error(), "JSON-LD script #2")
	})

	t.Run("lazy", func(t *testing.T) {
		doc := mustDoc(t, `<html><head>
			<script type="application/ld+json">{"@type": "Thing"}</script>
			<script type="application/ld+json">{broken</script>
		</head></html>`)

		calls := 0
		seq := jsonld.Locate(doc, jsonld.WithSkipHandler(func(*jsonld.ScriptError) { calls++ }))
		for range seq {
			break
		}
		require.Equal(t, 0, calls)

		jsonld.Materialize(seq)
		require.Equal(t, 1, calls)
	})

	t.Run("repair", func(t *testing.T) {
		src := `<html><head><script type="application/ld+json">
			{'@context': 'https://schema.org', '@type': 'Product', 'name': 'Rocket'}
		</script></head></html>`

		require.Empty(t, jsonld.Materialize(jsonld.Locate(mustDoc(t, src))))

		objects := jsonld.Materialize(jsonld.ObjectsWith(mustDoc(t, src), []jsonld.Option{jsonld.WithRepair()}, "product"))
		require.Equal(t, []string{"Rocket"}, names(objects))
	})

	t.Run("from node", func(t *testing.T) {
		root, err := html.Parse(strings.NewReader(scenarioPage))
		require.NoError(t, err)
		require.Len(t, jsonld.Materialize(jsonld.Locate(jsonld.FromNode(root))), 2)
	})

	t.Run("nil document", func(t *testing.T) {
		require.PanicsWithError(t, "invalid argument: nil document", func() {
			jsonld.Locate(nil)
		})
	})
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			"graph",
			`{"@context": "https://schema.org", "@graph": [
				{"@type": "Product", "name": "A"},
				{"@type": "Product", "name": "B"},
				{"@type": "Product", "name": "C"}
			]}`,
			[]string{"A", "B", "C"},
		},
		{
			"array root",
			`[
				{"@type": "Product", "name": "A"},
				{"@type": "Offer", "name": "B"},
				{"@type": "Person", "name": "C"},
				{"@type": "Place", "name": "D"}
			]`,
			[]string{"A", "B", "C", "D"},
		},
		{
			"nested containers",
			`[
				{"@context": "http://schema.org/", "@graph": [
					{"@type": "Product", "name": "A"},
					[{"@type": "Product", "name": "B"}, {"name": "no type"}],
					{"@graph": [{"@type": "Thing", "name": "C"}]}
				]},
				{"@type": "Thing", "name": "D"}
			]`,
			[]string{"A", "B", "C", "D"},
		},
		{
			"graph outside schema.org is a leaf",
			`{"@context": "https://example.org", "@type": "Collection", "name": "A",
			  "@graph": [{"@type": "Product", "name": "B"}]}`,
			[]string{"A"},
		},
		{
			"graph container is not yielded",
			`{"@context": "https://schema.org", "@type": "WebPage", "name": "page",
			  "@graph": [{"@type": "Product", "name": "A"}]}`,
			[]string{"A"},
		},
		{
			"graph must be an array",
			`{"@context": "https://schema.org", "@type": "Thing", "name": "A",
			  "@graph": {"@type": "Product", "name": "B"}}`,
			[]string{"A"},
		},
		{
			"type array",
			`[{"@type": ["Product", "Thing"], "name": "A"}, {"@type": [], "name": "B"}]`,
			[]string{"A"},
		},
		{
			"leaf without context",
			`{"@type": "Product", "name": "A"}`,
			[]string{"A"},
		},
		{"no type", `{"name": "A"}`, []string{}},
		{"non-string type", `{"@type": 12, "name": "A"}`, []string{}},
		{"scalar", `"Product"`, []string{}},
		{"null", `null`, []string{}},
	}

	for _, x := range tests {
		t.Run(x.name, func(t *testing.T) {
			objects := jsonld.Materialize(jsonld.Flatten(mustValue(t, x.src)))
			require.Equal(t, x.expected, names(objects))
		})
	}

	t.Run("early stop", func(t *testing.T) {
		v := mustValue(t, `[{"@type": "A", "name": "1"}, [{"@type": "B", "name": "2"}], {"@type": "C", "name": "3"}]`)
		var got []string
		for o := range jsonld.Flatten(v) {
			got = append(got, o.Types()...)
			if len(got) == 2 {
				break
			}
		}
		require.Equal(t, []string{"A", "B"}, got)
	})

	t.Run("does not mutate", func(t *testing.T) {
		v := mustValue(t, `{"@context": "https://schema.org", "@graph": [{"@type": "Product"}]}`)
		objects := jsonld.Materialize(jsonld.Flatten(v))
		require.Len(t, objects, 1)
		require.False(t, objects[0].Has("@context"))
		require.Equal(t, "https://schema.org", objects[0].Context())
		require.Equal(t, `{"@type":"Product"}`, objects[0].String())
	})

	t.Run("invalid value", func(t *testing.T) {
		require.Panics(t, func() {
			jsonld.Flatten(jsonld.Value{})
		})
	})

	t.Run("unsupported payload", func(t *testing.T) {
		payload := []map[string]any{{"@context": "https://schema.org", "@type": "Product"}}
		v := jsonld.FromAny(payload)
		require.Equal(t, jsonld.Invalid, v.Kind())
		require.NotPanics(t, func() {
			require.Empty(t, jsonld.Materialize(jsonld.Flatten(v)))
		})
	})
}

func TestContextInheritance(t *testing.T) {
	v := mustValue(t, `{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "Product", "name": "inherits"},
			{"@context": "https://example.org/vocab", "@type": "Product", "name": "overrides"},
			{"@context": "HTTP://SCHEMA.ORG", "@type": "Product", "name": "own"}
		]
	}`)

	objects := jsonld.Materialize(jsonld.ValueObjects(v, "Product"))
	require.Equal(t, []string{"inherits", "own"}, names(objects))

	// Without the container, the entry is not Schema.org data anymore.
	entry, ok := v.Get("@graph")
	require.True(t, ok)
	first := jsonld.Materialize(entry.Elements())[0]
	require.False(t, jsonld.IsSchemaOrgObjectOfType(first, "Product"))
}

func TestIsSchemaOrgContext(t *testing.T) {
	for _, ctx := range []string{
		"http://schema.org",
		"http://schema.org/",
		"https://schema.org",
		"https://schema.org/",
		"HTTPS://Schema.Org/",
		"Http://SCHEMA.org",
	} {
		assert.True(t, jsonld.IsSchemaOrgContext(ctx), ctx)
	}

	for _, ctx := range []string{
		"",
		"schema.org",
		"https://schema.org//",
		"https://www.schema.org",
		"https://schema.org/Product",
		" https://schema.org",
		"https://example.org",
	} {
		assert.False(t, jsonld.IsSchemaOrgContext(ctx), ctx)
	}
}

func TestIsSchemaOrgObjectOfType(t *testing.T) {
	product := mustValue(t, `{"@context": "https://schema.org", "@type": "Product"}`)

	for _, typ := range []string{"Product", "product", "PRODUCT", "pRoDuCt"} {
		assert.True(t, jsonld.IsSchemaOrgObjectOfType(product, typ), typ)
	}
	assert.False(t, jsonld.IsSchemaOrgObjectOfType(product, "Products"))
	assert.False(t, jsonld.IsSchemaOrgObjectOfType(product, ""))

	tests := []struct {
		name string
		src  string
		typ  string
		ok   bool
	}{
		{"no context", `{"@type": "Product"}`, "Product", false},
		{"foreign context", `{"@context": "https://example.org", "@type": "Product"}`, "Product", false},
		{"object context", `{"@context": {"@vocab": "https://schema.org/"}, "@type": "Product"}`, "Product", false},
		{"type array", `{"@context": "https://schema.org", "@type": ["Thing", "Product"]}`, "product", true},
		{"type array miss", `{"@context": "https://schema.org", "@type": ["Thing", "Product"]}`, "Offer", false},
		{"no type", `{"@context": "https://schema.org"}`, "Product", false},
		{"array", `[{"@context": "https://schema.org", "@type": "Product"}]`, "Product", false},
		{"simple fold", `{"@context": "https://schema.org", "@type": "Ÿ"}`, "ÿ", true},
		{"no expansion", `{"@context": "https://schema.org", "@type": "Straße"}`, "STRASSE", false},
		{"no ligature", `{"@context": "https://schema.org", "@type": "ﬁle"}`, "FILE", false},
	}

	for _, x := range tests {
		t.Run(x.name, func(t *testing.T) {
			require.Equal(t, x.ok, jsonld.IsSchemaOrgObjectOfType(mustValue(t, x.src), x.typ))
		})
	}

	require.False(t, jsonld.IsSchemaOrgObjectOfType(jsonld.Value{}, "Product"))
}

func TestFilter(t *testing.T) {
	v := mustValue(t, `{"@context": "https://schema.org", "@graph": [
		{"@type": "Product", "name": "p1"},
		{"@type": "Person", "name": "x"},
		{"@type": "Organization", "name": "o1"},
		{"@type": "product", "name": "p2"}
	]}`)

	t.Run("or", func(t *testing.T) {
		objects := jsonld.Materialize(jsonld.ValueObjects(v, "Product", "Organization"))
		require.Equal(t, []string{"p1", "o1", "p2"}, names(objects))
	})

	t.Run("mixed case", func(t *testing.T) {
		objects := jsonld.Materialize(jsonld.Filter(jsonld.Flatten(v), "pRoDuCt"))
		require.Equal(t, []string{"p1", "p2"}, names(objects))
	})

	t.Run("no types", func(t *testing.T) {
		objects := jsonld.Materialize(jsonld.ValueObjects(v))
		require.Equal(t, []string{"p1", "x", "o1", "p2"}, names(objects))
	})

	t.Run("unknown type", func(t *testing.T) {
		require.Empty(t, jsonld.Materialize(jsonld.ValueObjects(v, "Event")))
	})

	t.Run("foreign payload", func(t *testing.T) {
		payload := map[string]any{
			"@context": "https://schema.org/",
			"@graph": []any{
				map[string]any{"@type": "Event", "name": "e1"},
				"noise",
			},
		}
		objects := jsonld.Materialize(jsonld.ValueObjects(jsonld.FromAny(payload), "event"))
		require.Equal(t, []string{"e1"}, names(objects))
	})
}

func TestValue(t *testing.T) {
	v := mustValue(t, `{"@type": "Product", "tags": ["a", 1, true, null], "price": 12.5}`)

	assert := require.New(t)
	assert.Equal(jsonld.Object, v.Kind())
	assert.Equal(3, v.Len())
	assert.True(v.Has("price"))
	assert.False(v.Has("name"))

	typ, ok := v.Type()
	assert.True(ok)
	assert.Equal("Product", typ)
	assert.Equal("", v.Context())

	tags, ok := v.Get("tags")
	assert.True(ok)
	kinds := []jsonld.Kind{}
	for e := range tags.Elements() {
		kinds = append(kinds, e.Kind())
	}
	assert.Equal([]jsonld.Kind{jsonld.String, jsonld.Number, jsonld.Bool, jsonld.Null}, kinds)
	assert.Equal("array", tags.Kind().String())

	price, _ := v.Get("price")
	assert.Equal(12.5, price.Raw())

	_, err := jsonld.ParseString("  \n ")
	assert.True(errors.Is(err, jsonld.ErrEmptyScript))

	_, err = jsonld.ParseString("{")
	assert.ErrorContains(err, "decoding JSON-LD")

	assert.Equal(jsonld.Invalid, jsonld.FromAny(struct{}{}).Kind())
	assert.Equal("null", jsonld.Value{}.String())
}
