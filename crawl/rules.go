// Package crawl — URL filtering rules.
// Only same-host documents can carry the JSON-LD of a site, so discovery
// keeps URLs that look like HTML pages and drops everything else.
package crawl

import (
	"net/url"
	"path"
	"slices"
	"strings"
)

// pageExtensions are the path extensions served as HTML documents.
// A path without extension is always a page.
var pageExtensions = []string{
	".html", ".htm", ".xhtml", ".shtml",
	".php", ".asp", ".aspx", ".jsp", ".cfm",
}

// trackingParams are query parameters dropped by NormalizeURL.
var trackingParams = []string{"fbclid", "gclid", "msclkid", "mc_cid", "mc_eid"}

// IsSameHost reports whether rawURL is served by host.
// A leading "www." is ignored on both sides.
func IsSameHost(rawURL string, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.") == strings.TrimPrefix(host, "www.")
}

// IsPageURL reports whether the path of rawURL designates an HTML page.
func IsPageURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return ext == "" || slices.Contains(pageExtensions, ext)
}

// IsCrawlable reports whether rawURL is an http(s) page on host.
func IsCrawlable(rawURL string, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}
	return IsSameHost(rawURL, host) && IsPageURL(rawURL)
}

// NormalizeURL returns the deduplication key of a page URL: no fragment,
// lowercase host without default port, no trailing slash except for the
// root path "/", and no tracking parameters.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.Host = strings.ToLower(parsed.Host)
	if port := parsed.Port(); (parsed.Scheme == "http" && port == "80") || (parsed.Scheme == "https" && port == "443") {
		parsed.Host = parsed.Hostname()
	}
	switch {
	case parsed.Path == "" && parsed.Host != "":
		parsed.Path = "/"
	case parsed.Path != "/":
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	if parsed.RawQuery != "" {
		query := parsed.Query()
		for k := range query {
			if strings.HasPrefix(k, "utm_") || slices.Contains(trackingParams, k) {
				query.Del(k)
			}
		}
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}
