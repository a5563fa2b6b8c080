// Package cli implements the command-line interface for
// stoltzen-results.
//
// The cli package provides the Cobra-based CLI with two scrape modes
// (a results page, or a file of stat.php profile URLs), output
// formatting (text/JSON/CSV) and the wiring between config, scraper,
// profile cache and the result model. Results go to stdout or a file;
// logs always go to stderr.
package cli
