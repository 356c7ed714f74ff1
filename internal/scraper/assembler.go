package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/golevandrey/zoomagia-scraper/internal/extract"
	"github.com/golevandrey/zoomagia-scraper/internal/fetcher"
	"github.com/golevandrey/zoomagia-scraper/internal/types"
)

// Assembler builds one product record per page. Every failure — fetch,
// document parse, even a panicking extractor — is caught here, logged with
// the offending URL, and turned into a nil result. A single bad product must
// never take down a run.
type Assembler struct {
	fetcher   fetcher.Fetcher
	extractor *extract.Extractor
	logger    *slog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(f fetcher.Fetcher, ex *extract.Extractor, logger *slog.Logger) *Assembler {
	return &Assembler{
		fetcher:   f,
		extractor: ex,
		logger:    logger.With("component", "assembler"),
	}
}

// Assemble fetches the product page, runs every field extractor against the
// parsed document, and returns the finished record. Nil means the product is
// skipped for this run.
func (a *Assembler) Assemble(ctx context.Context, url string) (product *types.Product) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("error parsing product", "url", url, "error", fmt.Sprintf("panic: %v", r))
			product = nil
		}
	}()

	a.logger.Info("parsing product", "url", url)

	resp, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		a.logger.Error("error parsing product", "url", url, "error", err)
		return nil
	}

	doc, err := resp.Document()
	if err != nil {
		a.logger.Error("error parsing product", "url", url,
			"error", &types.ExtractError{URL: url, Err: err})
		return nil
	}

	ex := a.extractor
	product = types.NewProduct(url)
	product.Name = types.Optional(ex.Name(doc))
	product.Manufacturer = types.Optional(ex.Manufacturer(doc))
	product.Price = ex.Price(doc)
	product.Category = types.Optional(ex.Category(doc))
	product.Images = ex.Images(doc)
	product.Weight = ex.Weights(doc)
	product.Description = types.Optional(ex.Description(doc))
	product.Composition = types.Optional(ex.Composition(doc))
	product.Analysis = types.Optional(ex.Analysis(doc))
	product.FeedingNorm = types.Optional(ex.FeedingNorm(doc))
	product.Reviews = ex.Reviews(doc)

	return product
}
