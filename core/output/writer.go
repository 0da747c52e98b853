// Package output handles file naming and writing for ldpipe outputs.
// A single source is written to a flat file named after its URL
// (example_com_shop.json); in --all mode the file tree mirrors URL paths.
// Local file sources are named after the file.
package output

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Writer writes rendered output to a directory, or to a stream when no
// directory is configured.
type Writer struct {
	OutputDir string
	stream    io.Writer
}

// New creates a Writer targeting the given output directory, creating it
// if needed.
func New(outputDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{OutputDir: outputDir}, nil
}

// NewStream creates a Writer that copies every output to w.
func NewStream(w io.Writer) *Writer {
	return &Writer{stream: w}
}

// WriteOnly writes the output of a single source.
// It returns the written path, or "-" for a stream.
func (w *Writer) WriteOnly(source string, data []byte, ext string) (string, error) {
	if w.stream != nil {
		return w.copy(data)
	}
	return w.writeFile(filepath.Join(w.OutputDir, flatName(source)+ext), data)
}

// WriteAll writes the output of one crawled page, mirroring its URL path.
// Example: https://site.com/docs/intro → <dir>/docs/intro.json
func (w *Writer) WriteAll(rawURL string, data []byte, ext string) (string, error) {
	if w.stream != nil {
		return w.copy(data)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	urlPath := strings.Trim(parsed.Path, "/")
	if urlPath == "" {
		urlPath = "index"
	}
	segments := strings.Split(urlPath, "/")
	for i, s := range segments {
		segments[i] = sanitize(s)
	}

	fullPath := filepath.Join(append([]string{w.OutputDir}, segments...)...) + ext
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", filepath.Dir(fullPath), err)
	}
	return w.writeFile(fullPath, data)
}

func (w *Writer) copy(data []byte) (string, error) {
	if _, err := w.stream.Write(data); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return "-", nil
}

func (w *Writer) writeFile(path string, data []byte) (string, error) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// flatName converts a source into a flat file name.
// Example: https://example.com/docs/intro → example_com_docs_intro
func flatName(source string) string {
	if source == "-" {
		return "stdin"
	}

	parsed, err := url.Parse(source)
	if err != nil || parsed.Host == "" {
		base := filepath.Base(source)
		return sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	parts := []string{sanitize(parsed.Host)}
	for seg := range strings.SplitSeq(strings.Trim(parsed.Path, "/"), "/") {
		if seg != "" {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize replaces non-alphanumeric characters with underscores.
// Accents are dropped first, so "crème" becomes "creme".
func sanitize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if plain, _, err := transform.String(t, s); err == nil {
		s = plain
	}
	return strings.Map(func(ch rune) rune {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' {
			return ch
		}
		return '_'
	}, s)
}
