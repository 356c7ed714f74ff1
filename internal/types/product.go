package types

import (
	"strings"
	"time"
)

// Product is a single scraped sale item. A record is assembled once and never
// mutated afterwards; optional string fields are nil when the page did not
// yield a value, which serializes to JSON null. List fields are never nil: a
// page without images or reviews still yields empty arrays in the output.
type Product struct {
	URL          string   `json:"url"`
	Name         *string  `json:"name"`
	Manufacturer *string  `json:"manufacturer"`
	Price        Price    `json:"price"`
	Category     *string  `json:"category"`
	Images       []string `json:"images"`
	Weight       []string `json:"weight"`
	Description  *string  `json:"description"`
	Composition  *string  `json:"composition"`
	Analysis     *string  `json:"analysis"`
	FeedingNorm  *string  `json:"feeding_norm"`
	Reviews      []Review `json:"reviews"`

	// ParsedDate is the extraction timestamp, RFC 3339.
	ParsedDate string `json:"parsed_date"`
}

// Price holds the raw pricing text from the product page. Values are kept
// exactly as displayed (currency text included where the site renders it);
// nothing is parsed into numbers.
type Price struct {
	OldPrice     string `json:"old_price"`
	CurrentPrice string `json:"current_price"`
	Discount     string `json:"discount"`
}

// Review is one entry from the product comments list.
type Review struct {
	Text string `json:"text"`
}

// NewProduct creates a Product for the given page URL with the parse
// timestamp stamped now.
func NewProduct(url string) *Product {
	return &Product{
		URL:        url,
		Images:     []string{},
		Weight:     []string{},
		Reviews:    []Review{},
		ParsedDate: time.Now().Format(time.RFC3339),
	}
}

// Optional returns s as an optional field value: nil when the string is empty
// or whitespace-only, otherwise a pointer to the trimmed text. It is applied
// to top-level string fields only, never to Price members or list elements.
func Optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
