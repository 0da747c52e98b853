// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests for HTML pages and refuses anything that
// is not HTML, since there would be no JSON-LD scripts to read.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/gaurav-prasanna/ldpipe/core"
)

const (
	// DefaultTimeout is used when no timeout is configured.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is used when no user agent is configured.
	DefaultUserAgent = "ldpipe/1.0 (https://github.com/gaurav-prasanna/ldpipe)"

	maxBodySize = 10 << 20
)

// ErrNotHTML is returned when a response does not carry an HTML page.
var ErrNotHTML = errors.New("response is not HTML")

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// New creates an HTTPFetcher. Zero values select the defaults.
func New(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch retrieves the HTML content of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	contentType, err := detectHTML(resp.Header.Get("Content-Type"), body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	return &core.FetchResult{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		HTML:        string(body),
	}, nil
}

// detectHTML trusts an explicit HTML content type and sniffs the body
// when the header is missing or generic.
func detectHTML(header string, body []byte) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(header)
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return mediaType, nil
	case "", "application/octet-stream", "text/plain":
	default:
		return "", fmt.Errorf("%w (%s)", ErrNotHTML, mediaType)
	}

	mtype, err := mimetype.DetectReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/html") || m.Is("application/xhtml+xml") {
			return m.String(), nil
		}
	}
	return "", fmt.Errorf("%w (%s)", ErrNotHTML, mtype.String())
}
