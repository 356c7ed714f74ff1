package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// visibleText returns the rendered text of a node subtree: script and style
// subtrees are skipped entirely, each remaining text chunk is trimmed, empty
// chunks are dropped, and the rest are newline-joined.
func visibleText(n *html.Node) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(parts, "\n")
}
