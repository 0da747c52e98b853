// Package render — PDF renderer.
// Lays out the Markdown report with gofpdf: headings, property bullets
// and notes. Core fonts are used, so text goes through a cp1252 translator.
package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/ldpipe/core"
)

// PDFRenderer renders the Markdown report as a PDF document.
type PDFRenderer struct {
	md *MarkdownRenderer
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{md: NewMarkdownRenderer()}
}

// Render converts the pages into PDF bytes.
func (r *PDFRenderer) Render(pages []core.PageObjects) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("JSON-LD objects", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(r.md.markdown(pages), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			pdf.Ln(2)
		case line == "---":
			pdf.AddPage()
		case strings.HasPrefix(line, "#"):
			level := len(line) - len(strings.TrimLeft(line, "#"))
			renderHeading(pdf, tr(strings.TrimSpace(line[level:])), level)
		case strings.HasPrefix(trimmed, "> "):
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(150, 60, 60)
			pdf.MultiCell(0, 5, tr(trimmed[2:]), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		case strings.HasPrefix(trimmed, "Source: "):
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(100, 100, 100)
			pdf.MultiCell(0, 5, tr(trimmed), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		case strings.HasPrefix(trimmed, "- "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("• "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		default:
			// Continuation lines of multi-line property values.
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetX(pdf.GetX() + 4)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 13, 3: 11}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	pdf.Ln(1)
}

var (
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
	inlineLinkRegex = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
)

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = inlineLinkRegex.ReplaceAllString(text, "$1 ($2)")
	return strings.TrimSpace(text)
}
