// Package crawl provides URL discovery for --all mode.
// It discovers a site's pages via sitemap.xml (following one level of
// sitemap index) and falls back to breadth-first link crawling, keeping
// discovery separate from the extraction pipeline.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xmlquery"

	"github.com/gaurav-prasanna/ldpipe/core"
)

// DefaultMaxPages bounds a discovery when no limit is given.
const DefaultMaxPages = 100

const sitemapTimeout = 15 * time.Second

var linkMatcher = cascadia.MustCompile("a[href]")

// Discoverer finds the pages of a site.
//
// It is also a [core.Fetcher]: pages downloaded while following links are
// handed out once from memory instead of being fetched again.
type Discoverer struct {
	fetcher  core.Fetcher
	client   *http.Client
	maxPages int
	logger   *slog.Logger

	mu      sync.Mutex
	fetched map[string]*core.FetchResult
}

var _ core.Fetcher = (*Discoverer)(nil)

// New creates a Discoverer using fetcher for HTML pages.
// A nil logger discards messages.
func New(fetcher core.Fetcher, maxPages int, logger *slog.Logger) *Discoverer {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Discoverer{
		fetcher:  fetcher,
		client:   &http.Client{Timeout: sitemapTimeout},
		maxPages: maxPages,
		logger:   logger,
		fetched:  map[string]*core.FetchResult{},
	}
}

// Fetch returns the page at rawURL. A page already downloaded by link
// discovery is returned from memory, and forgotten.
func (d *Discoverer) Fetch(ctx context.Context, rawURL string) (*core.FetchResult, error) {
	d.mu.Lock()
	result, ok := d.fetched[rawURL]
	delete(d.fetched, rawURL)
	d.mu.Unlock()

	if ok {
		return result, nil
	}
	return d.fetcher.Fetch(ctx, rawURL)
}

// Discover returns up to maxPages internal URLs starting with baseURL.
// It first tries sitemap.xml, then falls back to link crawling.
func (d *Discoverer) Discover(ctx context.Context, baseURL string) ([]string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	q := newQueue()
	q.push(NormalizeURL(baseURL))

	sitemap := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, parsed.Host)
	if err := d.fromSitemap(ctx, q, sitemap, parsed.Hostname(), true); err != nil {
		d.logger.Debug("sitemap unavailable", slog.String("url", sitemap), slog.Any("err", err))
	}
	if q.len() > 1 {
		return q.all(), nil
	}

	return d.fromLinks(ctx, q, parsed.Hostname()), nil
}

// fromSitemap adds the page URLs of a sitemap to q. When follow is true,
// a sitemap index is followed one level down.
func (d *Discoverer) fromSitemap(ctx context.Context, q *queue, sitemapURL, host string, follow bool) error {
	doc, err := d.fetchXML(ctx, sitemapURL)
	if err != nil {
		return err
	}

	for _, n := range xmlquery.Find(doc, "//*[local-name()='url']/*[local-name()='loc']") {
		if q.len() >= d.maxPages {
			return nil
		}
		if loc := strings.TrimSpace(n.InnerText()); IsCrawlable(loc, host) {
			q.push(NormalizeURL(loc))
		}
	}

	if !follow {
		return nil
	}
	for _, n := range xmlquery.Find(doc, "//*[local-name()='sitemap']/*[local-name()='loc']") {
		if q.len() >= d.maxPages {
			return nil
		}
		child := strings.TrimSpace(n.InnerText())
		if err := d.fromSitemap(ctx, q, child, host, false); err != nil {
			d.logger.Debug("skipping sitemap", slog.String("url", child), slog.Any("err", err))
		}
	}
	return nil
}

func (d *Discoverer) fetchXML(ctx context.Context, rawURL string) (*xmlquery.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap returned %d", resp.StatusCode)
	}
	return xmlquery.Parse(resp.Body)
}

// fromLinks crawls breadth first from the URLs already in q.
// Pages that fail to load are skipped.
func (d *Discoverer) fromLinks(ctx context.Context, q *queue, host string) []string {
	for q.len() < d.maxPages {
		current, ok := q.pop()
		if !ok {
			break
		}

		result, err := d.fetcher.Fetch(ctx, current)
		if err != nil {
			d.logger.Debug("skipping page", slog.String("url", current), slog.Any("err", err))
			continue
		}
		d.mu.Lock()
		d.fetched[current] = result
		d.mu.Unlock()

		links, err := extractLinks(result.HTML, current)
		if err != nil {
			continue
		}
		for _, link := range links {
			if q.len() >= d.maxPages {
				break
			}
			if IsCrawlable(link, host) {
				q.push(NormalizeURL(link))
			}
		}
	}
	return q.all()
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var links []string
	for _, s := range doc.FindMatcher(linkMatcher).EachIter() {
		href, _ := s.Attr("href")
		if resolved := resolveURL(strings.TrimSpace(href), base); resolved != "" {
			links = append(links, resolved)
		}
	}
	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
