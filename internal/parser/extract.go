// internal/parser/extract.go
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Paragraphs returns the text nodes that are direct children of <p> elements,
// in document order. Text inside nested inline elements (<a>, <b>, ...) is not
// included. Whitespace-only nodes are skipped.
func Paragraphs(htmlBody []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		p.Contents().Each(func(_ int, c *goquery.Selection) {
			n := c.Get(0)
			if n.Type != html.TextNode || strings.TrimSpace(n.Data) == "" {
				return
			}
			out = append(out, n.Data)
		})
	})
	return out, nil
}

// Title returns the trimmed document <title>, or "".
func Title(htmlBody []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
