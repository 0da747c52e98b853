// Package render provides output renderers for the ldpipe pipeline.
// This file implements the Markdown renderer: one section per page, one
// sub-section per JSON-LD object listing its top-level properties.
package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/gaurav-prasanna/ldpipe/core"
	"github.com/gaurav-prasanna/ldpipe/core/jsonld"
	"github.com/gaurav-prasanna/ldpipe/core/normalize"
)

// MarkdownRenderer writes extraction results as a Markdown report.
type MarkdownRenderer struct {
	normalizer *normalize.MarkdownNormalizer
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{normalizer: normalize.New()}
}

// Render returns the Markdown report.
func (r *MarkdownRenderer) Render(pages []core.PageObjects) ([]byte, error) {
	return []byte(r.markdown(pages)), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func (r *MarkdownRenderer) markdown(pages []core.PageObjects) string {
	b := new(strings.Builder)
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		r.writePage(b, page)
	}
	return b.String()
}

func (r *MarkdownRenderer) writePage(b *strings.Builder, page core.PageObjects) {
	title := page.Metadata.Title
	if title == "" {
		title = page.Metadata.URL
	}
	fmt.Fprintf(b, "# %s\n\n", title)
	if page.Metadata.URL != "" {
		fmt.Fprintf(b, "Source: %s\n\n", page.Metadata.URL)
	}
	if n := len(page.Skipped); n > 0 {
		fmt.Fprintf(b, "> %d malformed JSON-LD script(s) skipped\n\n", n)
	}
	if len(page.Objects) == 0 {
		b.WriteString("No JSON-LD objects found.\n")
	}

	for _, o := range page.Objects {
		fmt.Fprintf(b, "## %s\n\n", objectTitle(o))
		m, _ := o.Raw().(map[string]any)
		for _, k := range slices.Sorted(maps.Keys(m)) {
			if k == jsonld.KeyType {
				continue
			}
			fmt.Fprintf(b, "- **%s**: %s\n", k, r.propertyText(m[k]))
		}
		b.WriteString("\n")
	}

	if len(page.Results) > 0 {
		b.WriteString("## Query results\n\n")
		for _, v := range page.Results {
			fmt.Fprintf(b, "- `%s`\n", compactJSON(v))
		}
		b.WriteString("\n")
	}
}

// objectTitle returns "Type: name" for an object, or only its types.
func objectTitle(o jsonld.Value) string {
	title := strings.Join(o.Types(), ", ")
	if name, ok := o.Get("name"); ok {
		if s, ok := name.Str(); ok && s != "" {
			title += ": " + s
		}
	}
	return title
}

func (r *MarkdownRenderer) propertyText(v any) string {
	switch t := v.(type) {
	case string:
		md, err := r.normalizer.Normalize(t)
		if err != nil {
			return t
		}
		return strings.ReplaceAll(md, "\n", "\n  ")
	case map[string]any, []any:
		return "`" + compactJSON(t) + "`"
	default:
		return compactJSON(t)
	}
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
