package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/golevandrey/zoomagia-scraper/internal/config"
	"github.com/golevandrey/zoomagia-scraper/internal/extract"
	"github.com/golevandrey/zoomagia-scraper/internal/fetcher"
	"github.com/golevandrey/zoomagia-scraper/internal/observability"
	"github.com/golevandrey/zoomagia-scraper/internal/storage"
	"github.com/golevandrey/zoomagia-scraper/internal/types"
)

// Runner orchestrates one full scrape: listing fetch, sequential product
// assembly with a fixed politeness delay, and snapshot persistence. It holds
// no state across runs beyond what the store writes.
type Runner struct {
	cfg       *config.Config
	fetcher   fetcher.Fetcher
	extractor *extract.Extractor
	assembler *Assembler
	store     storage.Store
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewRunner wires a Runner from its parts.
func NewRunner(cfg *config.Config, f fetcher.Fetcher, store storage.Store, metrics *observability.Metrics, logger *slog.Logger) *Runner {
	ex := extract.New(cfg.Rules)
	return &Runner{
		cfg:       cfg,
		fetcher:   f,
		extractor: ex,
		assembler: NewAssembler(f, ex, logger),
		store:     store,
		metrics:   metrics,
		logger:    logger.With("component", "runner"),
	}
}

// Run executes one scrape. Failures are logged and absorbed; only context
// cancellation cuts a run short.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("starting scraper run")
	r.metrics.RunsTotal.Inc()
	r.metrics.LastRunTime.SetToCurrentTime()

	links := r.productLinks(ctx)

	var batch []*types.Product
	for i, link := range links {
		r.logger.Info("processing product", "index", i+1, "total", len(links), "url", link)

		if product := r.assembler.Assemble(ctx, link); product != nil {
			batch = append(batch, product)
			r.metrics.ProductsScraped.Inc()
		} else {
			r.metrics.ProductsFailed.Inc()
		}

		// Fixed quiescent interval between requests. Not a rate limiter:
		// unconditional, no backoff on server errors.
		select {
		case <-ctx.Done():
			r.logger.Info("run cancelled", "processed", i+1, "total", len(links))
			return
		case <-time.After(r.cfg.Scraper.RequestDelay):
		}
	}

	r.metrics.LastBatchSize.Set(float64(len(batch)))

	if len(batch) == 0 {
		r.logger.Warn("no products were successfully scraped")
		r.metrics.EmptyRuns.Inc()
		return
	}

	if err := r.store.Save(ctx, batch); err != nil {
		r.logger.Error("error saving snapshot", "error", err)
	}

	r.logger.Info("scraper run completed", "products", len(batch))
}

// productLinks fetches the listing page and enumerates product URLs. A fetch
// or parse failure is logged and yields an empty set, never an error.
func (r *Runner) productLinks(ctx context.Context) []string {
	saleURL := r.cfg.Site.SaleURL()
	r.logger.Info("fetching product links", "url", saleURL)

	resp, err := r.fetcher.Fetch(ctx, saleURL)
	if err != nil {
		r.logger.Error("error getting product links", "error", err)
		return nil
	}

	doc, err := resp.Document()
	if err != nil {
		r.logger.Error("error getting product links",
			"error", &types.ExtractError{URL: saleURL, Err: err})
		return nil
	}

	links := r.extractor.ListingLinks(doc, r.cfg.Site.BaseURL)
	r.logger.Info("found product links", "count", len(links))
	return links
}
