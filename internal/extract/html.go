// Package extract recovers document text and clause structure.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a line of visible text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "table": true, "title": true,
}

// VisibleText extracts the readable text of an HTML document (for example a
// word processor's HTML export), one block element per line
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	return extractVisibleText(doc), nil
}

// extractVisibleText walks text nodes, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder
	var line strings.Builder

	flush := func() {
		text := strings.Join(strings.Fields(line.String()), " ")
		if text != "" {
			buf.WriteString(text)
			buf.WriteString("\n")
		}
		line.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			line.WriteString(n.Data)
			line.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			flush()
		}
	}

	walk(n)
	flush()
	return buf.String()
}

// LooksLikeHTML reports whether content appears to be an HTML document
func LooksLikeHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<body")
}
