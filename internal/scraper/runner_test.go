package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golevandrey/zoomagia-scraper/internal/config"
	"github.com/golevandrey/zoomagia-scraper/internal/extract"
	"github.com/golevandrey/zoomagia-scraper/internal/fetcher"
	"github.com/golevandrey/zoomagia-scraper/internal/observability"
	"github.com/golevandrey/zoomagia-scraper/internal/storage"
	"github.com/golevandrey/zoomagia-scraper/internal/types"
)

const listingPage = `<!DOCTYPE html>
<html><body>
  <div class="grid-product"><div class="title"><a href="/product/a">Корм A</a></div></div>
  <div class="grid-product"><div class="title"><a href="/product/b">Корм B</a></div></div>
</body></html>`

const productPageA = `<!DOCTYPE html>
<html>
<head>
  <title>Корм A для кошек – Зоомагия</title>
  <meta name="keywords" content="корм, кошки, BrandA">
</head>
<body>
  <ul class="shop-head-menu"><li>Главная</li><li>Корма</li><li>Корм A</li></ul>
  <h1>Корм A для кошек</h1>
  <img class="simpleLens-big-image" src="/img/a-1.jpg">
  <div class="simpleLens-thumbnails-container"><img src="/img/a-2.jpg"></div>
  <div class="packing-price-item"><span class="price-del">2000 ₽</span>1500 ₽</div>
  <div class="product-show-packing">2 кг</div>
  <div id="product-des">Описание корма A.</div>
  <div id="product-composition">Курица.</div>
  <div id="product-analysis">Белок 30%.</div>
  <div id="product-feeding_rates">50 г в день.</div>
  <ul class="product-comments-block"><li>Хороший корм.</li></ul>
</body>
</html>`

// testHarness wires a Runner against an httptest server and a temp output dir.
type testHarness struct {
	cfg    *config.Config
	runner *Runner
	outDir string
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, handler http.Handler) (*testHarness, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Site.BaseURL = srv.URL
	cfg.Site.SalePath = "/sale"
	cfg.Fetcher.Timeout = 200 * time.Millisecond
	cfg.Scraper.RequestDelay = time.Millisecond

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo}))

	outDir := t.TempDir()
	store, err := storage.NewSnapshotStore(outDir, cfg.Storage.FilePrefix, nil, logger)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	f := fetcher.NewHTTPFetcher(cfg, logger)
	t.Cleanup(func() { f.Close() })

	runner := NewRunner(cfg, f, store, observability.NewMetrics(logger), logger)
	return &testHarness{cfg: cfg, runner: runner, outDir: outDir, logs: logs}, srv
}

func TestRunSkipsTimedOutProduct(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sale", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage))
	})
	mux.HandleFunc("/product/a", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPageA))
	})
	mux.HandleFunc("/product/b", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second) // beyond the fetch timeout
		w.Write([]byte(productPageA))
	})

	h, srv := newHarness(t, mux)
	h.runner.Run(context.Background())

	data, err := os.ReadFile(filepath.Join(h.outDir, "zoomagia_products.json"))
	if err != nil {
		t.Fatalf("latest snapshot missing: %v", err)
	}

	var batch []types.Product
	if err := json.Unmarshal(data, &batch); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("expected batch of 1, got %d", len(batch))
	}

	got := batch[0]
	if got.URL != srv.URL+"/product/a" {
		t.Errorf("URL = %q", got.URL)
	}
	if got.Name == nil || *got.Name != "Корм A для кошек" {
		t.Errorf("Name = %v", got.Name)
	}
	if got.Manufacturer == nil || *got.Manufacturer != "BrandA" {
		t.Errorf("Manufacturer = %v", got.Manufacturer)
	}
	if got.Price.OldPrice != "2000 ₽" || got.Price.CurrentPrice != "1500" {
		t.Errorf("Price = %+v", got.Price)
	}
	if got.Category == nil || *got.Category != "Корма" {
		t.Errorf("Category = %v", got.Category)
	}
	if len(got.Images) != 2 || got.Images[0] != "/img/a-1.jpg" {
		t.Errorf("Images = %v", got.Images)
	}
	if len(got.Weight) != 1 || got.Weight[0] != "2 кг" {
		t.Errorf("Weight = %v", got.Weight)
	}
	if got.Description == nil || got.Composition == nil || got.Analysis == nil || got.FeedingNorm == nil {
		t.Errorf("tab fields should all be populated: %+v", got)
	}
	if len(got.Reviews) != 1 || got.Reviews[0].Text != "Хороший корм." {
		t.Errorf("Reviews = %v", got.Reviews)
	}

	logText := h.logs.String()
	if !strings.Contains(logText, "/product/b") {
		t.Error("log should reference the failed product URL")
	}
	if !strings.Contains(logText, "error parsing product") {
		t.Error("log should record the product failure")
	}
}

func TestRunZeroLinksWritesNothing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sale", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>распродажа закончилась</p></body></html>`))
	})

	h, _ := newHarness(t, mux)
	h.runner.Run(context.Background())

	entries, err := os.ReadDir(h.outDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no output files, found %d", len(entries))
	}
	if !strings.Contains(h.logs.String(), "no products were successfully scraped") {
		t.Error("expected a warning about the empty run")
	}
}

func TestRunListingFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sale", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	h, _ := newHarness(t, mux)
	h.runner.Run(context.Background())

	entries, _ := os.ReadDir(h.outDir)
	if len(entries) != 0 {
		t.Errorf("expected no output files, found %d", len(entries))
	}
	if !strings.Contains(h.logs.String(), "error getting product links") {
		t.Error("expected the listing failure to be logged")
	}
}

func TestAssembleIdempotent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product/a", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPageA))
	})

	h, srv := newHarness(t, mux)

	ex := extract.New(h.cfg.Rules)
	f := fetcher.NewHTTPFetcher(h.cfg, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	defer f.Close()
	asm := NewAssembler(f, ex, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	first := asm.Assemble(context.Background(), srv.URL+"/product/a")
	second := asm.Assemble(context.Background(), srv.URL+"/product/a")
	if first == nil || second == nil {
		t.Fatal("both assemblies should succeed")
	}

	// Byte-identical modulo the extraction timestamp.
	first.ParsedDate = ""
	second.ParsedDate = ""

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Errorf("records differ:\n%s\n%s", a, b)
	}
}

func TestAssembleEmptyListsSerializeAsArrays(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product/bare", func(w http.ResponseWriter, r *http.Request) {
		// No images, no packing options, no reviews.
		w.Write([]byte(`<html><head><title>Корм Bare – Зоомагия</title></head>
			<body><h1>Корм Bare</h1></body></html>`))
	})

	h, srv := newHarness(t, mux)

	ex := extract.New(h.cfg.Rules)
	f := fetcher.NewHTTPFetcher(h.cfg, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	defer f.Close()
	asm := NewAssembler(f, ex, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	product := asm.Assemble(context.Background(), srv.URL+"/product/bare")
	if product == nil {
		t.Fatal("assembly should succeed")
	}

	data, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("marshal product: %v", err)
	}
	for _, want := range []string{`"images":[]`, `"weight":[]`, `"reviews":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %s:\n%s", want, data)
		}
	}
}

func TestAssembleFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})

	h, srv := newHarness(t, mux)

	ex := extract.New(h.cfg.Rules)
	f := fetcher.NewHTTPFetcher(h.cfg, slog.New(slog.NewTextHandler(h.logs, nil)))
	defer f.Close()
	asm := NewAssembler(f, ex, slog.New(slog.NewTextHandler(h.logs, nil)))

	if p := asm.Assemble(context.Background(), srv.URL+"/product/gone"); p != nil {
		t.Errorf("expected nil product on fetch failure, got %+v", p)
	}
	if !strings.Contains(h.logs.String(), "/product/gone") {
		t.Error("failure log should reference the product URL")
	}
}
