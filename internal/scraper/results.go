package scraper

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkleiven/stoltzen-results/internal/logger"
	"github.com/mkleiven/stoltzen-results/internal/result"
	"github.com/mkleiven/stoltzen-results/internal/textenc"
	"github.com/mkleiven/stoltzen-results/internal/timing"
)

// positionPattern matches the leading position cell ("1", "12.").
var positionPattern = regexp.MustCompile(`^\d+\.?$`)

// FetchResults fetches a results page and parses its participant table.
func (s *Scraper) FetchResults(ctx context.Context, pageURL string) ([]*result.Participant, error) {
	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return s.parseResults(doc)
}

// parseResults extracts participants from the first table containing
// stat.php profile links. Rows that do not start with a position number
// (headers, separators) are skipped.
func (s *Scraper) parseResults(doc *goquery.Document) ([]*result.Participant, error) {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if sel.Find(`a[href*="stat.php"]`).Length() > 0 {
			table = sel
			return false
		}
		return true
	})
	if table == nil {
		return nil, errors.New("no results table found")
	}

	participants := make([]*result.Participant, 0)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 3 {
			return
		}
		if !positionPattern.MatchString(strings.TrimSpace(cells.Eq(0).Text())) {
			return
		}

		nameCell := cells.Eq(1)
		name := textenc.Repair(strings.TrimSpace(nameCell.Text()))
		if len([]rune(name)) < 2 {
			logger.IncrCounter("scrape.rows_skipped")
			return
		}
		profileLink, _ := nameCell.Find(`a[href*="stat.php"]`).Attr("href")

		rawTime := strings.TrimSpace(cells.Eq(2).Text())

		class := ""
		if cells.Length() > 3 {
			class = textenc.Repair(strings.TrimSpace(cells.Eq(3).Text()))
		}

		participants = append(participants, &result.Participant{
			Gruppe:      result.ClassifyGroup(class),
			Navn:        name,
			Tid:         timing.Parse(rawTime),
			Klasse:      class,
			ProfileLink: profileLink,
		})
	})

	logger.Debug("parsed results table", logger.Fields{"participants": len(participants)})
	return participants, nil
}
