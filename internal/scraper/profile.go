package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkleiven/stoltzen-results/internal/result"
	"github.com/mkleiven/stoltzen-results/internal/textenc"
	"github.com/mkleiven/stoltzen-results/internal/timing"
)

var (
	// timeWithYearPattern matches the "07.54 (2016)" form used by the
	// personal_best and last_time cells.
	timeWithYearPattern = regexp.MustCompile(`(\d+)\.(\d+)\s*\((\d{4})\)`)
	yearPattern         = regexp.MustCompile(`20\d{2}`)
	timeTokenPattern    = regexp.MustCompile(`\d+[.:]\d+(?:[.:]\d+)?`)
	digitsPattern       = regexp.MustCompile(`\d+`)

	statistikkPrefixPattern = regexp.MustCompile(`(?i)^(StoltzeStatistikk\s+for\s+|Statistikk\s+for\s+)`)
	titleNamePattern        = regexp.MustCompile(`for\s+(.+?)(?:\s*-|\s*$)`)
)

// Profile holds everything extracted from one stat.php page.
type Profile struct {
	Name           string                    `json:"name"`
	CurrentTime    string                    `json:"current_time"`
	Class          string                    `json:"class"`
	Participations int                       `json:"participations"`
	History        []result.HistoricalRecord `json:"history"`
}

// FetchProfile fetches and parses a stat.php profile page. The
// evaluation year decides which table entries count as "current" and
// which as history. Results are served from the cache when one is
// configured.
func (s *Scraper) FetchProfile(ctx context.Context, pageURL string, year int) (*Profile, error) {
	pageURL = s.absoluteURL(pageURL)
	cacheKey := fmt.Sprintf("%s|%d", pageURL, year)

	if s.cache != nil {
		if profile, ok := s.cache.Get(cacheKey); ok {
			return profile, nil
		}
	}

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	profile := parseProfile(doc, year)

	if s.cache != nil {
		s.cache.Put(cacheKey, profile)
	}
	return profile, nil
}

// parseProfile pulls the participant data out of a stat.php document.
// The id-tagged cells (personal_best, participations, last_time) are
// preferred; a row-by-row table scan fills in whatever they did not
// provide.
func parseProfile(doc *goquery.Document, year int) *Profile {
	p := &Profile{Name: extractName(doc)}

	// personal_best holds the site's own fastest-previous-time verdict.
	// It joins the history as one more candidate record.
	idBestFound := false
	if text := strings.TrimSpace(doc.Find("td#personal_best").Text()); text != "" {
		if m := timeWithYearPattern.FindStringSubmatch(text); m != nil {
			bestYear, _ := strconv.Atoi(m[3])
			p.History = append(p.History, result.HistoricalRecord{
				Year: bestYear,
				Time: timing.Parse(m[1] + "." + m[2]),
			})
			idBestFound = true
		}
	}

	if text := strings.TrimSpace(doc.Find("td#participations").Text()); text != "" {
		if m := digitsPattern.FindString(text); m != "" {
			p.Participations, _ = strconv.Atoi(m)
		}
	}

	if text := strings.TrimSpace(doc.Find("td#last_time").Text()); text != "" {
		if m := timeWithYearPattern.FindStringSubmatch(text); m != nil {
			if lastYear, _ := strconv.Atoi(m[3]); lastYear == year {
				p.CurrentTime = timing.Parse(m[1] + "." + m[2])
			}
		}
	}

	p.Class = extractLabelledCell(doc, "klasse")
	if p.Participations == 0 {
		if text := extractLabelledCell(doc, "deltagelser"); text != "" {
			if m := digitsPattern.FindString(text); m != "" {
				p.Participations, _ = strconv.Atoi(m)
			}
		}
	}

	scanYearRows(doc, p, year, idBestFound)
	return p
}

// extractName finds the participant name: page title first, headers as
// fallback. The "Statistikk for" prefix is stripped in both cases.
func extractName(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		if m := titleNamePattern.FindStringSubmatch(title); m != nil {
			name := statistikkPrefixPattern.ReplaceAllString(strings.TrimSpace(m[1]), "")
			name = textenc.Repair(strings.TrimSpace(name))
			if len([]rune(name)) >= 3 {
				return name
			}
		}
	}

	var name string
	doc.Find("h1, h2, h3").EachWithBreak(func(i int, header *goquery.Selection) bool {
		text := statistikkPrefixPattern.ReplaceAllString(strings.TrimSpace(header.Text()), "")
		text = strings.TrimSpace(text)
		if len([]rune(text)) > 3 && strings.Contains(text, " ") &&
			!strings.HasPrefix(strings.ToLower(text), "statistikk") {
			name = textenc.Repair(text)
			return false
		}
		return true
	})
	return name
}

// extractLabelledCell returns the cell following the first label cell
// containing keyword, e.g. "Klasse" -> "Herrer".
func extractLabelledCell(doc *goquery.Document, keyword string) string {
	var value string
	doc.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return true
		}
		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		if !strings.Contains(label, keyword) {
			return true
		}
		text := textenc.Repair(strings.TrimSpace(cells.Eq(1).Text()))
		if text != "" {
			value = text
			return false
		}
		return true
	})
	return value
}

// scanYearRows walks every table row looking for year cells with a
// time token nearby. Rows for the evaluation year fill in the current
// time (and class, when a group keyword sits in the same row); other
// years become historical records unless the personal_best cell
// already provided the site's verdict.
func scanYearRows(doc *goquery.Document, p *Profile, year int, idBestFound bool) {
	currentYear := strconv.Itoa(year)

	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		texts := make([]string, cells.Length())
		cells.Each(func(j int, cell *goquery.Selection) {
			texts[j] = strings.TrimSpace(cell.Text())
		})

		for j, text := range texts {
			yearMatch := yearPattern.FindString(text)
			if yearMatch == "" {
				continue
			}

			if yearMatch == currentYear {
				if p.CurrentTime != "" {
					continue
				}
				token, tokenIdx := adjacentTimeToken(texts, j)
				if token == "" {
					continue
				}
				p.CurrentTime = timing.Parse(token)
				if p.Class == "" {
					p.Class = adjacentClassLabel(texts, j, tokenIdx)
				}
				continue
			}

			if idBestFound {
				continue
			}
			recordYear, _ := strconv.Atoi(yearMatch)
			if token, _ := adjacentTimeToken(texts, j); token != "" {
				p.History = append(p.History, result.HistoricalRecord{
					Year: recordYear,
					Time: timing.Parse(token),
				})
			}
		}
	})
}

// adjacentTimeToken looks for a time token in the cells around index
// i (two to the left through two to the right), returning the token
// and the index it was found at.
func adjacentTimeToken(texts []string, i int) (string, int) {
	for j := max(0, i-2); j < min(len(texts), i+3); j++ {
		if j == i {
			continue
		}
		if token := timeTokenPattern.FindString(texts[j]); token != "" {
			return token, j
		}
	}
	return "", -1
}

// adjacentClassLabel looks for a group keyword in the cells around
// index i, skipping the year and time cells.
func adjacentClassLabel(texts []string, i, timeIdx int) string {
	for j := max(0, i-2); j < min(len(texts), i+3); j++ {
		if j == i || j == timeIdx {
			continue
		}
		lower := strings.ToLower(texts[j])
		if strings.Contains(lower, "kvinner") || strings.Contains(lower, "menn") ||
			strings.Contains(lower, "pluss") {
			return textenc.Repair(texts[j])
		}
	}
	return ""
}
