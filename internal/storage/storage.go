package storage

import (
	"context"

	"github.com/golevandrey/zoomagia-scraper/internal/types"
)

// Store persists one run's batch of product records.
type Store interface {
	// Save writes the batch. The batch is never merged with earlier runs.
	Save(ctx context.Context, products []*types.Product) error

	// Close releases any resources held by the store.
	Close() error
}
