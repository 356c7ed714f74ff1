package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/golevandrey/zoomagia-scraper/internal/config"
	"github.com/golevandrey/zoomagia-scraper/internal/fetcher"
	"github.com/golevandrey/zoomagia-scraper/internal/observability"
	"github.com/golevandrey/zoomagia-scraper/internal/scheduler"
	"github.com/golevandrey/zoomagia-scraper/internal/scraper"
	"github.com/golevandrey/zoomagia-scraper/internal/storage"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zoomagia",
		Short: "Weekly scraper for the zoomagia.ru sale listing",
		Long: `zoomagia scrapes the discounted-products listing of zoomagia.ru,
extracts structured attributes from every product page, and stores each run
as a timestamped JSON snapshot plus an always-current "latest" file.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(daemonCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runCmd creates the "run" subcommand: one scrape, then exit.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one scrape immediately and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			runner, cleanup, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			runner.Run(signalContext(logger))
			return nil
		},
	}
}

// daemonCmd creates the "daemon" subcommand: run now, then weekly.
func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run immediately, then on the weekly schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			runner, cleanup, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			task := scheduler.NewTask(cfg.Scheduler.Period, runner.Run)
			sched := scheduler.New(task, cfg.Scheduler.CheckInterval, logger)
			sched.Start(signalContext(logger))
			return nil
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Site:\n")
			fmt.Printf("  Base URL:        %s\n", cfg.Site.BaseURL)
			fmt.Printf("  Sale URL:        %s\n", cfg.Site.SaleURL())
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Timeout:         %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("  User-Agent:      %s\n", cfg.Fetcher.UserAgent)
			fmt.Printf("\nScraper:\n")
			fmt.Printf("  Request Delay:   %s\n", cfg.Scraper.RequestDelay)
			fmt.Printf("\nScheduler:\n")
			fmt.Printf("  Period:          %s\n", cfg.Scheduler.Period)
			fmt.Printf("  Check Interval:  %s\n", cfg.Scheduler.CheckInterval)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Output Dir:      %s\n", cfg.Storage.OutputDir)
			fmt.Printf("  File Prefix:     %s\n", cfg.Storage.FilePrefix)
			fmt.Printf("  Mongo Archive:   %v\n", cfg.Storage.MongoURI != "")
			fmt.Printf("\nLogging:\n")
			fmt.Printf("  Level:           %s\n", cfg.Logging.Level)
			fmt.Printf("  File:            %s\n", cfg.Logging.File)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:         %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:            %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zoomagia %s\n", config.Version)
		},
	}
}

// setup loads and validates the config and opens the logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// buildRunner wires the fetcher, storage, and metrics into a Runner.
func buildRunner(cfg *config.Config, logger *slog.Logger) (*scraper.Runner, func(), error) {
	var archive *storage.MongoArchive
	if cfg.Storage.MongoURI != "" {
		var err error
		archive, err = storage.NewMongoArchive(
			cfg.Storage.MongoURI,
			cfg.Storage.MongoDatabase,
			cfg.Storage.MongoCollection,
			logger,
		)
		if err != nil {
			// The archive is a mirror; the scraper still works without it.
			logger.Warn("mongo archive unavailable, continuing without it", "error", err)
		}
	}

	store, err := storage.NewSnapshotStore(cfg.Storage.OutputDir, cfg.Storage.FilePrefix, archive, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create snapshot store: %w", err)
	}

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	httpFetcher := fetcher.NewHTTPFetcher(cfg, logger)
	runner := scraper.NewRunner(cfg, httpFetcher, store, metrics, logger)

	cleanup := func() {
		if err := httpFetcher.Close(); err != nil {
			logger.Warn("fetcher close", "error", err)
		}
		if err := store.Close(); err != nil {
			logger.Warn("store close", "error", err)
		}
	}
	return runner, cleanup, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(logger *slog.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		cancel()
	}()

	return ctx
}

// setupLogger creates a structured logger writing to the configured log file
// and stderr. Failure to open the log file is a startup failure.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	var out io.Writer = os.Stderr
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}
