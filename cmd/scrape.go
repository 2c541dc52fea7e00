package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/ingest"
	"github.com/alshabili/first-backend/internal/publisher"
	"github.com/alshabili/first-backend/internal/ratelimit"
	"github.com/alshabili/first-backend/internal/scheduler"
	"github.com/alshabili/first-backend/internal/scraper"
)

// newScrapeCmd creates the 'scrape' subcommand, the producer half of the
// pipeline: scrape listings, dedup, scrape details, publish to the queue.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Runs the scraper on a fixed interval",
		Long: `Scrapes the newest projects of every configured category, skips the
ones already seen, fetches details for the rest with a headless browser,
and publishes each new job to the queue. Runs until interrupted.`,

		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.GetConfig()
	logger := appInstance.GetLogger()

	stopServer := startServerIfEnabled(appInstance)
	defer stopServer()

	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   cfg.Scraper.DomainRPS,
		DefaultBurst: cfg.Scraper.DomainBurst,
	})

	listing := scraper.NewListing(scraper.ListingConfig{
		BaseURL:   cfg.Scraper.BaseURL,
		UserAgent: cfg.Scraper.UserAgent,
		Limit:     cfg.Scraper.ListingLimit,
		Timeout:   cfg.FetchTimeout(),
	}, limiter, logger)

	details, err := scraper.NewDetails(scraper.DetailConfig{
		UserAgent:  cfg.Scraper.UserAgent,
		NavTimeout: cfg.NavTimeout(),
	}, limiter, logger)
	if err != nil {
		return fmt.Errorf("init detail scraper: %w", err)
	}
	defer details.Close()

	pub := publisher.New(appInstance.GetQueue(), appInstance.GetSeenSet(), logger)
	ingestor := ingest.New(listing, details, appInstance.GetSeenSet(), pub, cfg.Scraper.Categories, logger)

	sched := scheduler.New(ingestor, cfg.ScrapeInterval(), logger)
	if err := sched.Start(cmd.Context()); err != nil {
		return err
	}

	<-cmd.Context().Done()
	logger.Info("shutting down scraper", zap.Strings("categories", cfg.Scraper.Categories))
	sched.Stop()
	return nil
}
