package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Talhakakayzai/ecomerce-web-scraper/config"
	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
	"github.com/Talhakakayzai/ecomerce-web-scraper/parser"
	"github.com/Talhakakayzai/ecomerce-web-scraper/pipeline"
)

// Scraper walks the configured page range one page at a time.
type Scraper struct {
	cfg     *config.Config
	fetcher Fetcher
	logger  *slog.Logger
	Metrics *Metrics

	sleep func(context.Context, time.Duration) error
}

// NewScraper builds a scraper that fetches pages through a colly collector.
func NewScraper(cfg *config.Config, logger *slog.Logger) *Scraper {
	return NewScraperWithFetcher(cfg, NewCollyFetcher(cfg.UserAgent), logger)
}

// NewScraperWithFetcher builds a scraper around an arbitrary Fetcher.
func NewScraperWithFetcher(cfg *config.Config, fetcher Fetcher, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		Metrics: NewMetrics(),
		sleep:   sleepContext,
	}
}

// Run fetches every page in the range, extracts its products and appends
// them to agg. A page that cannot be fetched contributes nothing and the run
// moves on. The only error returned is ctx's, together with the partial
// result gathered so far.
func (s *Scraper) Run(ctx context.Context, agg *pipeline.Aggregate) (*models.ScrapeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID))
	extractor := parser.NewExtractor(s.cfg.Origin, s.cfg.Selectors, logger)

	result := &models.ScrapeResult{
		RunID:        runID,
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}
	finish := func() {
		result.EndTime = time.Now()
		result.Products = agg.Products()
		if dropped, ok := agg.GetMetrics()["dropped_products"].(map[string]int); ok {
			result.Dropped = dropped
		}
	}

	logger.Info("starting scrape",
		slog.Int("start_page", s.cfg.StartPage),
		slog.Int("end_page", s.cfg.EndPage),
		slog.Int("pages", s.cfg.Pages()),
	)

	for page := s.cfg.StartPage; page <= s.cfg.EndPage; page++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("scrape interrupted", slog.Int("page", page), slog.Any("error", err))
			finish()
			return result, err
		}

		s.scrapePage(ctx, logger, extractor, page, agg, result)

		if page == s.cfg.EndPage && !s.cfg.SleepAfterLastPage {
			break
		}
		if err := s.sleep(ctx, s.cfg.Delay); err != nil {
			logger.Warn("scrape interrupted", slog.Int("page", page), slog.Any("error", err))
			finish()
			return result, err
		}
	}

	finish()
	return result, nil
}

func (s *Scraper) scrapePage(ctx context.Context, logger *slog.Logger, extractor *parser.Extractor, page int, agg *pipeline.Aggregate, result *models.ScrapeResult) {
	pageURL := s.cfg.PageURL(page)
	logger.Info("scraping page", slog.Int("page", page), slog.String("url", pageURL))

	result.RequestCount++
	s.Metrics.IncRequest()
	start := time.Now()
	body, err := s.fetcher.Fetch(ctx, pageURL)
	s.Metrics.ObserveDuration(time.Since(start))
	result.PageCount++

	if err != nil {
		category := errorTypeLabel(err)
		result.ErrorsByType[category]++
		result.FailedPages = append(result.FailedPages, page)
		s.Metrics.IncError(category)
		s.Metrics.IncPage("failed")

		logger.Error("request failed",
			slog.String("url", pageURL),
			slog.String("category", category),
			slog.Any("error", err),
		)
		logger.Error("failed to retrieve or parse page", slog.Int("page", page))
		return
	}

	products, skipped := extractor.Extract(body)
	added := agg.Add(products...)
	result.SkippedCards += skipped
	s.Metrics.AddCards(len(products), skipped)
	s.Metrics.IncPage("ok")

	logger.Info("found products",
		slog.Int("page", page),
		slog.Int("products", len(products)),
		slog.Int("added", added),
		slog.Int("skipped_cards", skipped),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
