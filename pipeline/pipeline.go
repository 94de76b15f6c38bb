// Package pipeline wires the scraper, normalizer, filter, analyzer and sinks
// into one run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"suumo-scraper/config"
	"suumo-scraper/models"
	"suumo-scraper/scraper/suumo"
	"suumo-scraper/services"
	"suumo-scraper/storage"
	"suumo-scraper/utils"
)

// PreviewRows is how many filtered rows the report shows.
const PreviewRows = 5

// Summary describes what one run produced.
type Summary struct {
	SearchURL  string
	Scrape     *models.ScrapeResult
	Normalized []*models.Listing
	FieldErrs  []error
	Filtered   []*models.Listing
	Report     *models.Report
	// SinkErrs holds one entry per failing sink. A sink failure never
	// stops the other sinks.
	SinkErrs []error
}

// Runner executes the pipeline. Fetcher may be set to replace the one
// chosen from the configuration.
type Runner struct {
	Config  *config.Config
	Logger  *utils.Logger
	Out     io.Writer
	Fetcher suumo.Fetcher
}

// Run performs one full scrape. Only configuration errors are returned;
// fetch, extraction, normalization and sink failures are logged and
// reported in the Summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	cfg := r.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spec := cfg.FilterSpec()

	searchURL, err := suumo.BuildSearchURL(cfg.BaseURL, spec)
	if err != nil {
		return nil, err
	}
	sum := &Summary{SearchURL: searchURL}
	r.Logger.Info("Search URL: %s", searchURL)

	fetcher := r.Fetcher
	if fetcher == nil {
		f, closeFn := NewFetcher(cfg, r.Logger)
		defer closeFn()
		fetcher = f
	}

	sc := suumo.New(fetcher, nil, suumo.Options{RateLimitMs: cfg.RateLimitMs, MaxPages: cfg.MaxPages}, r.Logger)
	sum.Scrape = sc.Scrape(ctx, searchURL)
	if err := sum.Scrape.Err; err != nil {
		var fe *models.FetchError
		if errors.As(err, &fe) {
			r.Logger.Warn("Pagination stopped at page %d: %v", fe.Page, err)
		} else {
			r.Logger.Warn("Pagination stopped: %v", err)
		}
	}
	r.Logger.Info("Scraped %d raw listings over %d pages (%d rows skipped)",
		len(sum.Scrape.Listings), len(sum.Scrape.Pages), sum.Scrape.Skipped)

	normalizer := services.NewNormalizer(r.Logger, SentinelPolicy(cfg.SentinelPolicy))
	sum.Normalized, sum.FieldErrs = normalizer.Normalize(sum.Scrape.Listings)

	sum.Filtered = services.Filter(sum.Normalized, spec)
	r.Logger.Info("[filter] %d of %d listings match", len(sum.Filtered), len(sum.Normalized))

	sum.Report = services.NewAnalyzer(r.Logger).Analyze(sum.Filtered, spec)
	preview := sum.Filtered
	if len(preview) > PreviewRows {
		preview = preview[:PreviewRows]
	}
	services.PrintReport(r.Out, sum.Report, preview)

	// Listings gathered before an interrupt are still written out.
	sum.SinkErrs = r.persist(context.WithoutCancel(ctx), sum.Filtered)
	return sum, nil
}

func (r *Runner) persist(ctx context.Context, listings []*models.Listing) []error {
	var errs []error

	if err := writeCSV(ctx, r.Config.CSVOutputPath, listings); err != nil {
		r.Logger.Error("[csv] %v", err)
		errs = append(errs, err)
	} else {
		r.Logger.Info("[csv] Saved %d listings to %s", len(listings), r.Config.CSVOutputPath)
	}

	if r.Config.DBDriver != "" {
		if err := writeSQL(ctx, r.Config, listings, r.Logger); err != nil {
			r.Logger.Error("[sql] %v", err)
			errs = append(errs, err)
		} else {
			r.Logger.Info("[sql] Stored %d listings (%s, table: listings)", len(listings), r.Config.DBDriver)
		}
	}
	return errs
}

func writeCSV(ctx context.Context, path string, listings []*models.Listing) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(ctx, listings); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func writeSQL(ctx context.Context, cfg *config.Config, listings []*models.Listing, logger *utils.Logger) error {
	w, err := storage.NewSQLWriter(ctx, cfg.DBDriver, cfg.DSN(), logger)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Write(ctx, listings)
}

// NewFetcher builds the fetcher selected by cfg.FetchMode. The returned
// func releases it.
func NewFetcher(cfg *config.Config, logger *utils.Logger) (suumo.Fetcher, func()) {
	timeout := time.Duration(cfg.HTTPTimeoutSec) * time.Second
	if cfg.FetchMode == config.FetchBrowser {
		f := suumo.NewBrowserFetcher(suumo.BrowserOptions{
			ChromeBin: cfg.ChromeBin,
			UserAgent: cfg.UserAgent,
			Timeout:   timeout,
		})
		return f, func() { _ = f.Close() }
	}
	return suumo.NewHTTPFetcher(suumo.HTTPOptions{
		UserAgent:   cfg.UserAgent,
		Timeout:     timeout,
		MaxAttempts: cfg.MaxRetries,
		Logger:      logger,
	}), func() {}
}

// SentinelPolicy maps the configured policy name to the normalizer policy.
func SentinelPolicy(name string) services.SentinelPolicy {
	if name == config.SentinelExclude {
		return services.SentinelExclude
	}
	return services.SentinelAsZero
}

// Report re-renders the report of a CSV written by an earlier run.
func Report(path string, cfg *config.Config, logger *utils.Logger, out io.Writer) error {
	listings, err := storage.ReadCSV(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	report := services.NewAnalyzer(logger).Analyze(listings, cfg.FilterSpec())
	preview := listings
	if len(preview) > PreviewRows {
		preview = preview[:PreviewRows]
	}
	services.PrintReport(out, report, preview)
	return nil
}
