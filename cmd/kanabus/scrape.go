package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kanabus/internal/cache"
	"kanabus/internal/holiday"
	"kanabus/internal/sample"
	"kanabus/internal/scraper"
	"kanabus/pkg/kanachu"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch the timetables and write bus_timetable.json and holidays.json",
	Long: `Scrapes every configured route from the operator's mobile pages,
falls back to the bundled sample data for routes that fail, computes the
holiday calendar for the coming months and writes both artifacts.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().String("output-dir", "", "directory the artifacts are written to (overrides OUTPUT_DIR)")
	scrapeCmd.Flags().String("strategy", "", "parse strategy: table or tab (overrides PARSE_STRATEGY)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strategy") {
		cfg.ParseStrategy, _ = cmd.Flags().GetString("strategy")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("scrape configured",
		"routes", len(cfg.Routes),
		"output_dir", cfg.OutputDir,
		"sample_file", cfg.SampleFile,
		"tls_verify", cfg.TLSVerify,
	)
	if !cfg.TLSVerify {
		logger.Warn("TLS certificate verification disabled")
	}

	strategy, err := kanachu.NewStrategy(cfg.ParseStrategy)
	if err != nil {
		return err
	}

	fetcher := kanachu.NewFetcher(kanachu.FetcherOptions{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		TLSVerify: cfg.TLSVerify,
		Attempts:  cfg.FetchAttempts,
		Backoff:   cfg.FetchBackoff,
	}, logger)

	var calendar holiday.Calendar = holiday.Rules{}
	if cfg.HolidayCSVURL != "" {
		client := &http.Client{Timeout: cfg.FetchTimeout}
		official, err := holiday.FetchCabinetOffice(ctx, client, cfg.HolidayCSVURL, holiday.Rules{}, logger)
		if err != nil {
			logger.Warn("official holiday list unavailable, using computed rules", "error", err)
		} else {
			calendar = official
		}
	}

	opts := scraper.Options{
		Routes:          cfg.Routes,
		DayTypes:        cfg.DayTypes,
		Fetcher:         fetcher,
		Strategy:        strategy,
		Fallback:        sample.NewLoader(cfg.SampleFile, logger),
		Calendar:        calendar,
		LookaheadMonths: cfg.LookaheadMonths,
		TimetablePath:   cfg.TimetablePath(),
		HolidaysPath:    cfg.HolidaysPath(),
	}

	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, logger)
		if err != nil {
			logger.Warn("redis unavailable, skipping mirror", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rc.Close()
			opts.Publisher = rc
		}
	}

	report, err := scraper.New(opts, logger).Run(ctx)
	if err != nil {
		return err
	}
	for _, rr := range report.Routes {
		if rr.FromSample {
			logger.Warn("route served from sample data", "run_id", report.RunID, "route", rr.Route)
		}
	}
	return nil
}
