package html

import (
	"fmt"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor turns HTML or plain text bodies into plain text.
type Extractor struct{}

// New creates a new extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml", "text/plain"}
}

// Extract returns the readable text of body. An unsupported MIME type or an
// unreadable document is an *domain.ExtractionError.
func (e *Extractor) Extract(body, mimeType string) (string, error) {
	switch mediaType(mimeType) {
	case "text/html", "application/xhtml+xml":
		return extractHTML(body, mimeType)
	case "text/plain", "":
		return cleanLines(body), nil
	default:
		return "", &domain.ExtractionError{MIMEType: mimeType, Err: domain.ErrUnsupportedType}
	}
}

// mediaType strips parameters such as charset.
func mediaType(mimeType string) string {
	if strings.TrimSpace(mimeType) == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}

// Elements whose content is never visible text.
const invisible = "script, style, noscript, head, svg, template, iframe, object"

// Elements rendered on their own line.
var blockElements = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
	"blockquote": true, "pre": true, "section": true, "article": true,
	"header": true, "footer": true, "nav": true, "aside": true, "figure": true, "figcaption": true,
}

func extractHTML(body, mimeType string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", &domain.ExtractionError{MIMEType: mimeType, Err: fmt.Errorf("parse html: %w", err)}
	}
	doc.Find(invisible).Remove()

	var b strings.Builder
	walk(doc.Selection, &b)
	return cleanLines(b.String()), nil
}

// walk writes the text under sel, breaking lines around block elements.
func walk(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch name := goquery.NodeName(s); {
		case name == "#text":
			b.WriteString(s.Text())
		case name == "#comment":
		case name == "br" || name == "hr":
			b.WriteByte('\n')
		case name == "td" || name == "th":
			b.WriteByte(' ')
			walk(s, b)
			b.WriteByte(' ')
		case blockElements[name]:
			b.WriteByte('\n')
			walk(s, b)
			b.WriteByte('\n')
		default:
			walk(s, b)
		}
	})
}

// cleanLines collapses runs of whitespace within each line and drops
// blank lines.
func cleanLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
