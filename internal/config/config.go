package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the zoomagia scraper. Defaults mirror
// the fixed constants the scraper has always run with; the file/env layer
// exists so a markup or cadence change is a config edit, not a rebuild.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"      yaml:"site"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	Scraper   ScraperConfig   `mapstructure:"scraper"   yaml:"scraper"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Rules     RulesConfig     `mapstructure:"rules"     yaml:"rules"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// SiteConfig identifies the scraped site.
type SiteConfig struct {
	BaseURL  string `mapstructure:"base_url"  yaml:"base_url"`
	SalePath string `mapstructure:"sale_path" yaml:"sale_path"`
}

// SaleURL returns the absolute URL of the discounted-products listing page.
func (s SiteConfig) SaleURL() string {
	return s.BaseURL + s.SalePath
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	UserAgent      string        `mapstructure:"user_agent"      yaml:"user_agent"`
	Accept         string        `mapstructure:"accept"          yaml:"accept"`
	AcceptLanguage string        `mapstructure:"accept_language" yaml:"accept_language"`
	Timeout        time.Duration `mapstructure:"timeout"         yaml:"timeout"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`
}

// ScraperConfig controls the run orchestrator.
type ScraperConfig struct {
	// RequestDelay is the unconditional politeness pause between product
	// fetches. It is not adaptive; there is no backoff.
	RequestDelay time.Duration `mapstructure:"request_delay" yaml:"request_delay"`
}

// SchedulerConfig controls the weekly run cadence.
type SchedulerConfig struct {
	Period        time.Duration `mapstructure:"period"         yaml:"period"`
	CheckInterval time.Duration `mapstructure:"check_interval" yaml:"check_interval"`
}

// StorageConfig controls snapshot output.
type StorageConfig struct {
	OutputDir  string `mapstructure:"output_dir"  yaml:"output_dir"`
	FilePrefix string `mapstructure:"file_prefix" yaml:"file_prefix"`

	// MongoURI enables the optional snapshot archive when non-empty. File
	// snapshots are always written regardless.
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file"  yaml:"file"`
}

// MetricsConfig controls the Prometheus endpoint (daemon mode only).
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// Rule is a single extraction rule: where to look and what to take.
type Rule struct {
	Selector  string `mapstructure:"selector"  yaml:"selector"`
	Type      string `mapstructure:"type"      yaml:"type"`      // css (default) or xpath
	Attribute string `mapstructure:"attribute" yaml:"attribute"` // "" or "text" for node text, else attribute name
}

// RulesConfig is the extraction rule table, bound by default to the current
// zoomagia markup. A site layout change is a data update here, not a logic
// change in the extractors.
type RulesConfig struct {
	ListingItem    Rule `mapstructure:"listing_item"    yaml:"listing_item"`
	ListingLink    Rule `mapstructure:"listing_link"    yaml:"listing_link"`
	Title          Rule `mapstructure:"title"           yaml:"title"`
	Heading        Rule `mapstructure:"heading"         yaml:"heading"`
	KeywordsMeta   Rule `mapstructure:"keywords_meta"   yaml:"keywords_meta"`
	BrandLink      Rule `mapstructure:"brand_link"      yaml:"brand_link"`
	PriceBlock     Rule `mapstructure:"price_block"     yaml:"price_block"`
	OldPrice       Rule `mapstructure:"old_price"       yaml:"old_price"`
	DiscountBadge  Rule `mapstructure:"discount_badge"  yaml:"discount_badge"`
	Breadcrumbs    Rule `mapstructure:"breadcrumbs"     yaml:"breadcrumbs"`
	BigImage       Rule `mapstructure:"big_image"       yaml:"big_image"`
	Thumbnails     Rule `mapstructure:"thumbnails"      yaml:"thumbnails"`
	PackingOptions Rule `mapstructure:"packing_options" yaml:"packing_options"`
	DescriptionTab Rule `mapstructure:"description_tab" yaml:"description_tab"`
	CompositionTab Rule `mapstructure:"composition_tab" yaml:"composition_tab"`
	AnalysisTab    Rule `mapstructure:"analysis_tab"    yaml:"analysis_tab"`
	FeedingTab     Rule `mapstructure:"feeding_tab"     yaml:"feeding_tab"`
	ReviewItems    Rule `mapstructure:"review_items"    yaml:"review_items"`
}

// DefaultConfig returns a Config with the scraper's standing constants.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:  "https://zoomagia.ru",
			SalePath: "/shop/sale",
		},
		Fetcher: FetcherConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			AcceptLanguage: "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3",
			Timeout:        30 * time.Second,
			MaxBodySize:    10 * 1024 * 1024, // 10MB
		},
		Scraper: ScraperConfig{
			RequestDelay: 2 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Period:        7 * 24 * time.Hour,
			CheckInterval: time.Hour,
		},
		Storage: StorageConfig{
			OutputDir:       "output",
			FilePrefix:      "zoomagia_products",
			MongoDatabase:   "zoomagia",
			MongoCollection: "snapshots",
		},
		Rules: DefaultRules(),
		Logging: LoggingConfig{
			Level: "info",
			File:  "zoomagia_scraper.log",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// DefaultRules returns the extraction rule table for the current site markup.
func DefaultRules() RulesConfig {
	return RulesConfig{
		ListingItem:    Rule{Selector: ".grid-product"},
		ListingLink:    Rule{Selector: ".title a", Attribute: "href"},
		Title:          Rule{Selector: "title"},
		Heading:        Rule{Selector: "h1"},
		KeywordsMeta:   Rule{Selector: "//meta[@name='keywords']", Type: "xpath", Attribute: "content"},
		BrandLink:      Rule{Selector: ".brand a"},
		PriceBlock:     Rule{Selector: ".packing-price-item"},
		OldPrice:       Rule{Selector: ".price-del"},
		DiscountBadge:  Rule{Selector: ".price-customer-discount-badge"},
		Breadcrumbs:    Rule{Selector: ".shop-head-menu li"},
		BigImage:       Rule{Selector: ".simpleLens-big-image", Attribute: "src"},
		Thumbnails:     Rule{Selector: ".simpleLens-thumbnails-container img", Attribute: "src"},
		PackingOptions: Rule{Selector: ".product-show-packing"},
		DescriptionTab: Rule{Selector: "#product-des"},
		CompositionTab: Rule{Selector: "#product-composition"},
		AnalysisTab:    Rule{Selector: "#product-analysis"},
		FeedingTab:     Rule{Selector: "#product-feeding_rates"},
		ReviewItems:    Rule{Selector: ".product-comments-block li"},
	}
}
