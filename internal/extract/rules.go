package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/golevandrey/zoomagia-scraper/internal/config"
)

// Values applies a rule against the document and returns all matched values
// in document order, empty values dropped. Rules of type "xpath" are
// evaluated with htmlquery against the same parsed tree; anything else is a
// CSS selector.
func Values(doc *goquery.Document, rule config.Rule) []string {
	if rule.Selector == "" {
		return nil
	}
	if rule.Type == "xpath" {
		return xpathValues(doc, rule)
	}
	return cssValues(doc, rule)
}

// First returns the first value matched by the rule, or "".
func First(doc *goquery.Document, rule config.Rule) string {
	vals := Values(doc, rule)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func cssValues(doc *goquery.Document, rule config.Rule) []string {
	var values []string

	doc.Find(rule.Selector).Each(func(i int, sel *goquery.Selection) {
		var val string

		switch rule.Attribute {
		case "", "text":
			val = strings.TrimSpace(sel.Text())
		default:
			val, _ = sel.Attr(rule.Attribute)
		}

		if val != "" {
			values = append(values, val)
		}
	})

	return values
}

func xpathValues(doc *goquery.Document, rule config.Rule) []string {
	root := documentRoot(doc)
	if root == nil {
		return nil
	}

	nodes, err := htmlquery.QueryAll(root, rule.Selector)
	if err != nil {
		return nil
	}

	var values []string
	for _, node := range nodes {
		var val string

		switch rule.Attribute {
		case "", "text":
			val = strings.TrimSpace(htmlquery.InnerText(node))
		default:
			val = htmlquery.SelectAttr(node, rule.Attribute)
		}

		if val != "" {
			values = append(values, val)
		}
	}

	return values
}

// documentRoot exposes the underlying html.Node tree that goquery parsed, so
// xpath rules run against the same document instead of reparsing.
func documentRoot(doc *goquery.Document) *html.Node {
	if doc == nil || len(doc.Selection.Nodes) == 0 {
		return nil
	}
	return doc.Selection.Nodes[0]
}
