package sources

import (
	"strings"

	"golang.org/x/net/html"
)

// FromHTML strips markup from an HTML document and returns its
// visible text, trimmed, for use as a source's plain-text Text field.
// This is a convenience for callers feeding in raw scraped pages; it
// is not a retrieval mechanism — citeright never fetches anything
// itself, it only turns caller-supplied HTML into plain text.
func FromHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				buf.WriteString("\n")
			}
		}
	}
	extractText(doc)

	return strings.TrimSpace(collapseBlankLines(buf.String()))
}

// collapseBlankLines replaces runs of 3+ newlines with a single
// paragraph break, since block-element boundaries can otherwise stack
// up multiple blank lines in a row.
func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
