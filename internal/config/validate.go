package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for values the scraper cannot run with.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("site.base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("site.base_url: missing host")
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be positive, got %s", cfg.Fetcher.Timeout)
	}
	if cfg.Scraper.RequestDelay < 0 {
		return fmt.Errorf("scraper.request_delay must not be negative, got %s", cfg.Scraper.RequestDelay)
	}
	if cfg.Scheduler.Period <= 0 {
		return fmt.Errorf("scheduler.period must be positive, got %s", cfg.Scheduler.Period)
	}
	if cfg.Scheduler.CheckInterval <= 0 {
		return fmt.Errorf("scheduler.check_interval must be positive, got %s", cfg.Scheduler.CheckInterval)
	}
	if cfg.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir must not be empty")
	}
	return nil
}
