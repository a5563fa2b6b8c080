package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkleiven/stoltzen-results/internal/config"
	"github.com/mkleiven/stoltzen-results/internal/logger"
	"github.com/mkleiven/stoltzen-results/internal/scraper"
	"github.com/mkleiven/stoltzen-results/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagFormat  string
	flagOutput  string
	flagWorkers int
	flagTimeout int
	flagYear    int
	flagDataDir string
	flagGroup   string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stoltzen-results",
		Short: "Scrape Stoltzekleiven Opp race results",
		Long: `Scrape race results from stoltzen.no, enrich each participant with
historical personal-best data from their profile page, and output
grouped, sorted results as text, JSON or CSV.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.stoltzen-results/config.yaml)")
	pf.StringVar(&flagFormat, "format", "", "Output format: text, json or csv")
	pf.StringVarP(&flagOutput, "output", "o", "", "Output file (default stdout)")
	pf.IntVar(&flagWorkers, "workers", 0, "Concurrent profile fetches")
	pf.IntVar(&flagTimeout, "timeout", 0, "Request timeout in seconds")
	pf.IntVar(&flagYear, "year", 0, "Evaluation year (default current year)")
	pf.StringVar(&flagDataDir, "data-dir", "", "Data directory for the profile cache (caching off when empty)")
	pf.StringVar(&flagGroup, "group", "", "Only output one group: Dame, Mann or Pluss")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newResultsCmd(), newProfilesCmd())
	return cmd
}

// loadConfig merges the config file with flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagFormat != "" {
		cfg.Format = flagFormat
	}
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if flagTimeout > 0 {
		cfg.TimeoutSeconds = flagTimeout
	}
	if flagYear > 0 {
		cfg.Year = flagYear
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}

	if _, err := parseFormat(cfg.Format); err != nil {
		return cfg, err
	}
	if _, err := parseGroupFilter(flagGroup); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newScraper builds the scraper and, when a data directory is
// configured, its disk-backed profile cache. The returned flush func
// persists the cache and is a no-op without one.
func newScraper(cfg config.Config) (*scraper.Scraper, func(), error) {
	scraperCfg := scraper.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout(),
		Workers:   cfg.Workers,
	}

	flush := func() {}
	if cfg.DataDir != "" {
		store, err := storage.New(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing profile cache: %w", err)
		}
		scraperCfg.Cache = store
		flush = func() {
			if err := store.Flush(); err != nil {
				logger.Error("flushing profile cache", nil, err)
			}
		}
	}

	return scraper.New(scraperCfg), flush, nil
}

func setupLogging() {
	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}
}

// openOutput returns the writer results go to and a close func.
func openOutput() (*os.File, func(), error) {
	if flagOutput == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(flagOutput)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
