package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Talhakakayzai/ecomerce-web-scraper/config"
	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
	"github.com/Talhakakayzai/ecomerce-web-scraper/pipeline"
	"github.com/Talhakakayzai/ecomerce-web-scraper/report"
	"github.com/Talhakakayzai/ecomerce-web-scraper/scraper"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg.LogFile, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, logger, os.Stdout); err != nil {
		logger.Error("scraping job failed", slog.Any("error", err))
		closeLog()
		os.Exit(1)
	}
}

// loadConfig layers defaults, the optional YAML file, SCRAPER_* variables
// and finally command-line flags.
func loadConfig(args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	fs := flag.NewFlagSet("scraper", flag.ContinueOnError)
	configFile := fs.String("config", "", "Optional YAML configuration file")
	startPage := fs.Int("start", -1, "First listing page (inclusive)")
	endPage := fs.Int("end", -1, "Last listing page (inclusive)")
	delay := fs.Duration("delay", -1, "Delay between page requests (e.g. 2s)")
	origin := fs.String("origin", "", "Site origin prefixed to page paths and product links")
	csvFile := fs.String("csv", "", "CSV output path")
	jsonFile := fs.String("json", "", "JSON output path")
	sqliteFile := fs.String("sqlite", "", "Optional SQLite database that keeps every run")
	logFile := fs.String("log-file", "", "Diagnostic log file")
	dedupe := fs.Bool("dedupe", false, "Drop products whose URL was already scraped in this run")
	metricsAddr := fs.String("metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	verbose := fs.Bool("v", false, "Enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		fc, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
		if fc == nil {
			return nil, fmt.Errorf("config file %s not found", *configFile)
		}
		if err := fc.Apply(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if *startPage >= 0 {
		cfg.StartPage = *startPage
	}
	if *endPage >= 0 {
		cfg.EndPage = *endPage
	}
	if *delay >= 0 {
		cfg.Delay = *delay
	}
	if *origin != "" {
		cfg.Origin = *origin
	}
	if *csvFile != "" {
		cfg.CSVFile = *csvFile
	}
	if *jsonFile != "" {
		cfg.JSONFile = *jsonFile
	}
	if *sqliteFile != "" {
		cfg.SQLiteFile = *sqliteFile
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *dedupe {
		cfg.Dedupe = true
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	fmt.Fprintln(stdout, "Starting E-commerce Web Scraper")
	startTime := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scraper.NewScraper(cfg, logger)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		logger.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	agg, err := pipeline.NewAggregate(cfg.Dedupe, cfg.DedupeMaxSize)
	if err != nil {
		return err
	}

	result, err := s.Run(ctx, agg)
	if err != nil {
		logger.Warn("scrape stopped early, exporting partial results", slog.Any("error", err))
	}

	exporter, err := newExporter(cfg, result.RunID)
	if err != nil {
		return err
	}
	defer func() {
		if err := exporter.Close(); err != nil {
			logger.Error("close exporter", slog.Any("error", err))
		}
	}()
	// Exports run even when the scrape was interrupted.
	if err := exporter.Export(context.WithoutCancel(ctx), result.Products); err != nil {
		return err
	}

	if err := report.Write(stdout, report.Summarize(result.Products)); err != nil {
		return err
	}
	printFailures(stdout, result)
	printDropped(stdout, result)
	fmt.Fprintf(stdout, "Scraping completed in: %v\n", time.Since(startTime))

	logger.Info("scraping job finished successfully",
		slog.String("run_id", result.RunID),
		slog.Int("products", len(result.Products)),
		slog.Int("failed_pages", len(result.FailedPages)),
		slog.Int("skipped_cards", result.SkippedCards),
		slog.Any("dropped_products", result.Dropped),
	)
	return nil
}

func newExporter(cfg *config.Config, runID string) (*pipeline.MultiExporter, error) {
	exporters := []pipeline.Exporter{
		pipeline.NewCSVExporter(cfg.CSVFile),
		pipeline.NewJSONExporter(cfg.JSONFile),
	}
	if cfg.SQLiteFile != "" {
		db, err := pipeline.NewSQLiteExporter(cfg.SQLiteFile, runID)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, db)
	}
	return pipeline.NewMultiExporter(exporters...), nil
}

func printFailures(w io.Writer, result *models.ScrapeResult) {
	if !result.Partial() {
		return
	}
	fmt.Fprintf(w, "Pages that failed: %v (see log for details)\n", result.FailedPages)
}

func printDropped(w io.Writer, result *models.ScrapeResult) {
	if n := result.Dropped["duplicate_url"]; n > 0 {
		fmt.Fprintf(w, "Duplicate products dropped: %d\n", n)
	}
}

// newLogger writes text records (time, level, message) to an append-only
// log file.
func newLogger(path string, verbose bool) (*slog.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	var once sync.Once
	closeFn := func() {
		once.Do(func() { f.Close() })
	}
	return slog.New(handler), closeFn, nil
}
