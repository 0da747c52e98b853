// Package normalize turns the text of JSON-LD string properties
// (descriptions, review bodies) into Markdown for human-readable reports.
// Publishers often embed HTML markup or entities in those strings.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var (
	rxTag   = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	rxSpace = regexp.MustCompile(`[ \t]+`)
)

// MarkdownNormalizer converts property text to Markdown.
type MarkdownNormalizer struct{}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{}
}

// Normalize converts a property value into Markdown. Markup goes through
// html-to-markdown; plain text only has its entities decoded and its
// blanks collapsed.
func (n *MarkdownNormalizer) Normalize(text string) (string, error) {
	if !rxTag.MatchString(text) {
		return strings.TrimSpace(rxSpace.ReplaceAllString(html.UnescapeString(text), " ")), nil
	}

	markdown, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
