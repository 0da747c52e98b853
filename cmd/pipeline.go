package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/ldpipe/core"
	"github.com/gaurav-prasanna/ldpipe/core/output"
	"github.com/gaurav-prasanna/ldpipe/crawl"
)

// pipeline holds the stages of one extract run.
type pipeline struct {
	fetcher   core.Fetcher
	extractor core.Extractor
	querier   core.Querier // optional
	renderer  core.Renderer
	writer    *output.Writer
	stdin     io.Reader
	logger    *slog.Logger
}

// runOnly processes a single source through the pipeline.
func (p *pipeline) runOnly(ctx context.Context, source string) error {
	page, err := p.process(ctx, source)
	if err != nil {
		return err
	}

	data, err := p.renderer.Render([]core.PageObjects{*page})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	path, err := p.writer.WriteOnly(source, data, p.renderer.Extension())
	if err != nil {
		return err
	}
	p.logger.Info("written", slog.String("path", path), slog.Int("objects", len(page.Objects)))
	return nil
}

// runAll discovers the internal pages of a site and processes them,
// several at a time. Output keeps the discovery order.
func (p *pipeline) runAll(ctx context.Context, rawURL string, discoverer *crawl.Discoverer, concurrency int) error {
	p.logger.Info("discovering pages", slog.String("url", rawURL))

	urls, err := discoverer.Discover(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	p.logger.Info("pages found", slog.Int("count", len(urls)))

	// Pages read during link discovery are not downloaded again.
	p.fetcher = discoverer

	results := make([]*core.PageObjects, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, pageURL := range urls {
		g.Go(func() error {
			page, err := p.process(gctx, pageURL)
			if err != nil {
				// A failing page must not stop the others.
				p.logger.Warn("page failed", slog.String("url", pageURL), slog.Any("err", err))
				return nil
			}
			p.logger.Debug("page processed", slog.String("url", pageURL), slog.Int("objects", len(page.Objects)))
			results[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.writeAll(urls, results)
}

func (p *pipeline) writeAll(urls []string, results []*core.PageObjects) error {
	var pages []core.PageObjects
	var errCount int
	for _, page := range results {
		if page == nil {
			errCount++
			continue
		}
		pages = append(pages, *page)
	}

	if p.writer.OutputDir == "" {
		// Stream output: one document holding every page.
		data, err := p.renderer.Render(pages)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		if _, err := p.writer.WriteAll(urls[0], data, p.renderer.Extension()); err != nil {
			return err
		}
	} else {
		for _, page := range pages {
			data, err := p.renderer.Render([]core.PageObjects{page})
			if err != nil {
				p.logger.Warn("render failed", slog.String("url", page.Metadata.URL), slog.Any("err", err))
				errCount++
				continue
			}
			path, err := p.writer.WriteAll(page.Metadata.URL, data, p.renderer.Extension())
			if err != nil {
				p.logger.Warn("write failed", slog.String("url", page.Metadata.URL), slog.Any("err", err))
				errCount++
				continue
			}
			p.logger.Info("written", slog.String("path", path), slog.Int("objects", len(page.Objects)))
		}
	}

	if errCount > 0 {
		p.logger.Warn("some pages failed", slog.Int("failed", errCount), slog.Int("total", len(urls)))
	}
	return nil
}

// process runs a single source through fetch, extract and query.
func (p *pipeline) process(ctx context.Context, source string) (*core.PageObjects, error) {
	// 1. Load
	html, err := p.load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	// 2. Extract JSON-LD objects
	page, err := p.extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	page.Metadata = buildMetadata(source, page.Metadata)

	// 3. Query
	if p.querier != nil {
		if page.Results, err = p.querier.Query(page.Objects); err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
	}
	return page, nil
}

// load returns the HTML of a URL, a local file or stdin ("-").
func (p *pipeline) load(ctx context.Context, source string) (string, error) {
	switch {
	case source == "-":
		data, err := io.ReadAll(p.stdin)
		if err != nil {
			return "", fmt.Errorf("reading standard input: %w", err)
		}
		return string(data), nil
	case isURL(source):
		result, err := p.fetcher.Fetch(ctx, source)
		if err != nil {
			return "", err
		}
		return result.HTML, nil
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// buildMetadata completes the extracted metadata with the source URL.
func buildMetadata(source string, meta core.PageMetadata) core.PageMetadata {
	meta.URL = source
	meta.FetchedAt = time.Now().UTC().Format(time.RFC3339)
	if parsed, err := url.Parse(source); err == nil && isURL(source) {
		meta.Domain = parsed.Host
		meta.Path = parsed.Path
	}
	return meta
}

// isURL reports whether source is an absolute http(s) URL.
func isURL(source string) bool {
	parsed, err := url.Parse(source)
	return err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
