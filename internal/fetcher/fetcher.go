package fetcher

import (
	"context"

	"github.com/golevandrey/zoomagia-scraper/internal/types"
)

// Fetcher retrieves raw page documents.
type Fetcher interface {
	// Fetch retrieves the content at the given URL.
	Fetch(ctx context.Context, url string) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
