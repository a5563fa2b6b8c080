package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkleiven/stoltzen-results/internal/logger"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles <url-file>",
		Short: "Scrape stat.php profile URLs listed in a file",
		Long: `Read stat.php URLs from a text file (one per line, # starts a
comment), scrape each profile concurrently, and output the grouped,
time-sorted results with personal-best comparisons.`,
		Args: cobra.ExactArgs(1),
		RunE: runProfiles,
	}
}

func runProfiles(cmd *cobra.Command, args []string) error {
	setupLogging()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	urls, err := loadURLFile(args[0])
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no valid stat.php URLs in %s", args[0])
	}
	logger.Info("loaded profile URLs", logger.Fields{
		"count": len(urls),
		"file":  args[0],
	})

	sc, flushCache, err := newScraper(cfg)
	if err != nil {
		return err
	}

	participants := sc.FetchProfiles(context.Background(), urls, cfg.Year)
	flushCache()

	if len(participants) == 0 {
		return fmt.Errorf("no participants could be scraped")
	}
	return writeResults(participants, cfg)
}

// loadURLFile reads profile URLs from a text file. Blank lines and
// lines starting with # are skipped; lines that are not stat.php URLs
// are logged and dropped rather than failing the run.
func loadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "stat.php?id=") {
			logger.Warn("skipping invalid URL", logger.Fields{"line": line})
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL file: %w", err)
	}
	return urls, nil
}
