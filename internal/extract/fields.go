package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/golevandrey/zoomagia-scraper/internal/config"
	"github.com/golevandrey/zoomagia-scraper/internal/types"
)

// Extractor pulls product attributes out of a parsed page using the
// configured rule table. Every method is pure over the document: a missing
// element yields the empty value, never an error. A markup change on the site
// silently produces empty fields; that is the contract.
type Extractor struct {
	rules config.RulesConfig
}

// New creates an Extractor bound to the given rule table.
func New(rules config.RulesConfig) *Extractor {
	return &Extractor{rules: rules}
}

// Name extracts the product name. The page title wins when it carries the
// site's "name – shop" dash; otherwise the first heading.
func (e *Extractor) Name(doc *goquery.Document) string {
	title := First(doc, e.rules.Title)
	if strings.Contains(title, "–") {
		return strings.TrimSpace(strings.Split(title, "–")[0])
	}

	return First(doc, e.rules.Heading)
}

// Manufacturer extracts the brand: the last comma-separated token of the
// keywords metadata, falling back to the brand link's text.
func (e *Extractor) Manufacturer(doc *goquery.Document) string {
	if content := First(doc, e.rules.KeywordsMeta); content != "" {
		var parts []string
		for _, part := range strings.Split(content, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}

	return First(doc, e.rules.BrandLink)
}

// Price extracts the raw pricing text from the packing price block. The
// current price is derived by cutting the old-price substring and the ruble
// sign out of the block's full text; this assumes the site's current text
// ordering and is deliberately not re-derived from markup.
func (e *Extractor) Price(doc *goquery.Document) types.Price {
	var price types.Price

	block := doc.Find(e.rules.PriceBlock.Selector).First()
	if block.Length() == 0 {
		return price
	}

	oldPrice := block.Find(e.rules.OldPrice.Selector).First()
	if oldPrice.Length() > 0 {
		price.OldPrice = strings.TrimSpace(oldPrice.Text())

		current := strings.TrimSpace(block.Text())
		current = strings.ReplaceAll(current, price.OldPrice, "")
		current = strings.ReplaceAll(current, "₽", "")
		price.CurrentPrice = strings.TrimSpace(current)
	}

	if badge := block.Find(e.rules.DiscountBadge.Selector).First(); badge.Length() > 0 {
		price.Discount = strings.TrimSpace(badge.Text())
	}

	return price
}

// Category extracts the immediate parent category: the second-to-last
// breadcrumb item. Fewer than two items means no category.
func (e *Extractor) Category(doc *goquery.Document) string {
	crumbs := doc.Find(e.rules.Breadcrumbs.Selector)
	if crumbs.Length() < 2 {
		return ""
	}
	return strings.TrimSpace(crumbs.Eq(crumbs.Length() - 2).Text())
}

// Images extracts the image URLs: the big image first, then thumbnail gallery
// sources in document order, skipping any src already collected. Never nil; a
// page without images yields an empty list.
func (e *Extractor) Images(doc *goquery.Document) []string {
	images := []string{}
	seen := make(map[string]bool)

	if src := First(doc, e.rules.BigImage); src != "" {
		images = append(images, src)
		seen[src] = true
	}

	for _, src := range Values(doc, e.rules.Thumbnails) {
		if !seen[src] {
			seen[src] = true
			images = append(images, src)
		}
	}

	return images
}

// Weights extracts the package-size variants as displayed, in document order.
// Never nil.
func (e *Extractor) Weights(doc *goquery.Document) []string {
	weights := Values(doc, e.rules.PackingOptions)
	if weights == nil {
		return []string{}
	}
	return weights
}

// Description extracts the description tab's visible text.
func (e *Extractor) Description(doc *goquery.Document) string {
	return e.tabContent(doc, e.rules.DescriptionTab)
}

// Composition extracts the composition tab's visible text.
func (e *Extractor) Composition(doc *goquery.Document) string {
	return e.tabContent(doc, e.rules.CompositionTab)
}

// Analysis extracts the guaranteed-analysis tab's visible text.
func (e *Extractor) Analysis(doc *goquery.Document) string {
	return e.tabContent(doc, e.rules.AnalysisTab)
}

// FeedingNorm extracts the feeding-rates tab's visible text.
func (e *Extractor) FeedingNorm(doc *goquery.Document) string {
	return e.tabContent(doc, e.rules.FeedingTab)
}

// tabContent resolves a tab container and returns its visible text with
// script/style markup stripped, newline-joined.
func (e *Extractor) tabContent(doc *goquery.Document, rule config.Rule) string {
	sel := doc.Find(rule.Selector).First()
	if len(sel.Nodes) == 0 {
		return ""
	}
	return visibleText(sel.Nodes[0])
}

// Reviews extracts the comments list, one record per item, raw trimmed text
// only. No rating/author/date parsing. Never nil.
func (e *Extractor) Reviews(doc *goquery.Document) []types.Review {
	reviews := []types.Review{}

	doc.Find(e.rules.ReviewItems.Selector).Each(func(i int, sel *goquery.Selection) {
		reviews = append(reviews, types.Review{Text: strings.TrimSpace(sel.Text())})
	})

	return reviews
}

// ListingLinks enumerates product URLs from the listing page: each listing
// item's title anchor, relative hrefs resolved against the base origin.
// Order follows the document.
func (e *Extractor) ListingLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	attr := e.rules.ListingLink.Attribute
	if attr == "" {
		attr = "href"
	}

	var links []string
	doc.Find(e.rules.ListingItem.Selector).Each(func(i int, item *goquery.Selection) {
		href, ok := item.Find(e.rules.ListingLink.Selector).First().Attr(attr)
		if !ok || href == "" {
			return
		}

		parsed, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(parsed).String())
	})

	return links
}
