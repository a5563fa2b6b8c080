package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkleiven/stoltzen-results/internal/logger"
)

func newResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <url>",
		Short: "Scrape a results page and enrich every participant",
		Long: `Scrape the main results table at the given URL, fetch each
participant's stat.php profile concurrently, and output the grouped,
time-sorted results with personal-best comparisons.`,
		Args: cobra.ExactArgs(1),
		RunE: runResults,
	}
}

func runResults(cmd *cobra.Command, args []string) error {
	setupLogging()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sc, flushCache, err := newScraper(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger.Info("fetching results page", logger.Fields{"url": args[0]})

	participants, err := sc.FetchResults(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching results: %w", err)
	}
	logger.Info("parsed results table", logger.Fields{
		"participants": len(participants),
		"year":         cfg.Year,
	})

	sc.EnrichParticipants(ctx, participants, cfg.Year)
	flushCache()

	return writeResults(participants, cfg)
}
