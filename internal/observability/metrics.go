package observability

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks operational counters for the scraper. Each instance carries
// its own registry so the daemon and tests never fight over registration.
type Metrics struct {
	RunsTotal       prometheus.Counter
	ProductsScraped prometheus.Counter
	ProductsFailed  prometheus.Counter
	EmptyRuns       prometheus.Counter
	LastRunTime     prometheus.Gauge
	LastBatchSize   prometheus.Gauge

	registry *prometheus.Registry
	logger   *slog.Logger
}

// NewMetrics creates and registers the scraper metrics.
func NewMetrics(logger *slog.Logger) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoomagia_runs_total",
			Help: "Total scraper runs started",
		}),
		ProductsScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoomagia_products_scraped_total",
			Help: "Total products successfully assembled",
		}),
		ProductsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoomagia_products_failed_total",
			Help: "Total products skipped due to fetch or extraction failure",
		}),
		EmptyRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoomagia_empty_runs_total",
			Help: "Total runs that produced no products",
		}),
		LastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zoomagia_last_run_timestamp_seconds",
			Help: "Unix time of the last run start",
		}),
		LastBatchSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zoomagia_last_batch_size",
			Help: "Number of products in the last batch",
		}),
		registry: prometheus.NewRegistry(),
		logger:   logger.With("component", "metrics"),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.ProductsScraped,
		m.ProductsFailed,
		m.EmptyRuns,
		m.LastRunTime,
		m.LastBatchSize,
	)

	return m
}

// StartServer serves the metrics endpoint in the background.
func (m *Metrics) StartServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
}
