// Package extract implements the Extractor interface.
// It parses a full HTML page, reads its title and language, and collects
// the page's JSON-LD objects, optionally restricted to some Schema.org types.
package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/ldpipe/core"
	"github.com/gaurav-prasanna/ldpipe/core/jsonld"
)

// LDExtractor extracts JSON-LD objects from HTML pages.
type LDExtractor struct {
	types  []string
	repair bool
	logger *slog.Logger
}

// Option configures an LDExtractor.
type Option func(*LDExtractor)

// WithTypes restricts the extracted objects to the given Schema.org types.
func WithTypes(types ...string) Option {
	return func(e *LDExtractor) {
		e.types = append(e.types, types...)
	}
}

// WithRepair tries to repair malformed JSON-LD scripts instead of skipping them.
func WithRepair(repair bool) Option {
	return func(e *LDExtractor) {
		e.repair = repair
	}
}

// WithLogger sets the logger receiving skipped-script messages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *LDExtractor) {
		e.logger = logger
	}
}

// New creates an LDExtractor.
func New(options ...Option) *LDExtractor {
	e := &LDExtractor{logger: slog.New(slog.DiscardHandler)}
	for _, f := range options {
		f(e)
	}
	return e
}

// Extract parses the HTML and returns its JSON-LD objects. Page metadata
// only holds the title and language; the URL part belongs to the caller.
func (e *LDExtractor) Extract(html string) (*core.PageObjects, error) {
	doc, err := jsonld.ParseHTML(html)
	if err != nil {
		return nil, err
	}

	res := &core.PageObjects{
		Metadata: core.PageMetadata{
			Title:    strings.TrimSpace(doc.Find("head title").First().Text()),
			Language: pageLanguage(doc),
		},
	}

	opts := []jsonld.Option{
		jsonld.WithSkipHandler(func(se *jsonld.ScriptError) {
			e.logger.Debug("skipped JSON-LD script", slog.Int("index", se.Index), slog.Any("err", se.Err))
			res.Skipped = append(res.Skipped, core.SkippedScript{Index: se.Index, Error: se.Err.Error()})
		}),
	}
	if e.repair {
		opts = append(opts, jsonld.WithRepair())
	}

	res.Objects = jsonld.Materialize(jsonld.ObjectsWith(doc, opts, e.types...))
	return res, nil
}

// pageLanguage returns the lang attribute of the <html> element.
func pageLanguage(doc *goquery.Document) string {
	lang, _ := doc.Find("html").First().Attr("lang")
	return strings.TrimSpace(lang)
}
