// Package core defines the pipeline interfaces for ldpipe.
// Each stage of the pipeline is a clean, testable interface:
// fetch → extract → query → render → write.
package core

import (
	"context"

	"github.com/gaurav-prasanna/ldpipe/core/jsonld"
)

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	HTML        string
}

// PageMetadata holds metadata extracted from the page and URL.
type PageMetadata struct {
	URL       string `json:"url" yaml:"url"`
	Domain    string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Language  string `json:"language,omitempty" yaml:"language,omitempty"`
	FetchedAt string `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"` // ISO8601
}

// SkippedScript records a JSON-LD script that could not be parsed.
type SkippedScript struct {
	Index int    `json:"index" yaml:"index"`
	Error string `json:"error" yaml:"error"`
}

// PageObjects is the extraction result for a single page.
type PageObjects struct {
	Metadata PageMetadata    `json:"metadata" yaml:"metadata"`
	Objects  []jsonld.Value  `json:"objects" yaml:"objects"`
	Results  []any           `json:"results,omitempty" yaml:"results,omitempty"`
	Skipped  []SkippedScript `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor pulls the JSON-LD objects out of raw HTML.
type Extractor interface {
	Extract(html string) (*PageObjects, error)
}

// Querier projects extracted objects into arbitrary values.
type Querier interface {
	Query(objects []jsonld.Value) ([]any, error)
}

// Renderer converts extraction results into a final output format.
type Renderer interface {
	Render(pages []PageObjects) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".json", ".pdf").
	Extension() string
}
