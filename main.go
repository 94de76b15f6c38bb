package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"suumo-scraper/config"
	"suumo-scraper/models"
	"suumo-scraper/pipeline"
	"suumo-scraper/scraper/suumo"
	"suumo-scraper/utils"
)

var rootCmd = &cobra.Command{
	Use:   "suumo-scraper",
	Short: "suumo-scraper collects, filters and summarizes Suumo rental listings.",
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes every result page, filters the listings and writes them to the sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		logger.Info("=== Suumo Scraping System starting ===")
		logger.Info("Config: mode %s | rate %dms | retries %d | max pages %d | db %q",
			cfg.FetchMode, cfg.RateLimitMs, cfg.MaxRetries, cfg.MaxPages, cfg.DBDriver)

		runner := &pipeline.Runner{Config: cfg, Logger: logger, Out: cmd.OutOrStdout()}
		sum, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		if len(sum.Filtered) == 0 {
			logger.Warn("No listings matched the filter")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "  Done. %d listings → %s\n\n", len(sum.Filtered), cfg.CSVOutputPath)
		return nil
	},
}

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Prints the search URL built from the configured filter.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		searchURL, err := suumo.BuildSearchURL(cfg.BaseURL, cfg.FilterSpec())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), searchURL)
		return nil
	},
}

var reportCSV *string

var reportCmd = &cobra.Command{
	Use:   "report [--csv <path/to/listings.csv>]",
	Short: "Prints the report for a CSV written by an earlier scrape.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		path := *reportCSV
		if path == "" {
			path = cfg.CSVOutputPath
		}
		return pipeline.Report(path, cfg, logger, cmd.OutOrStdout())
	},
}

func init() {
	reportCSV = reportCmd.Flags().String("csv", "", "The CSV to summarize (defaults to CSV_OUTPUT_PATH).")
	rootCmd.AddCommand(scrapeCmd, urlCmd, reportCmd)
	rootCmd.SilenceUsage = true
}

func setup() (*config.Config, *utils.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := utils.NewLogger()
	logger.SetDebug(cfg.Debug)
	return cfg, logger, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, models.ErrEmptyBaseURL) {
			fmt.Fprintln(os.Stderr, "SUUMO_BASE_URL must not be empty")
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
