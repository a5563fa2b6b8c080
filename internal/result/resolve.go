package result

import (
	"github.com/mkleiven/stoltzen-results/internal/timing"
)

// BestResult is the fastest previous participation for a participant.
// A zero value means no usable previous participation was found.
type BestResult struct {
	Time string
	Year int
}

// Outcome is the comparison of a current time against the best
// previous one. Delta is "" when either side is absent or
// incomparable.
type Outcome struct {
	NewBest bool
	Delta   string
}

// Resolve selects the fastest historical time recorded outside
// currentYear and compares currentTime against it. Records from
// currentYear itself are never candidates. Records whose time cannot
// be converted to seconds are skipped. Ties on seconds go to the
// earliest year so the selection does not depend on discovery order.
func Resolve(currentTime string, history []HistoricalRecord, currentYear int) (BestResult, Outcome) {
	var best BestResult
	bestSeconds := -1

	for _, rec := range history {
		if rec.Year == currentYear {
			continue
		}
		seconds, err := timing.ToSeconds(rec.Time)
		if err != nil {
			continue
		}
		if bestSeconds < 0 || seconds < bestSeconds ||
			(seconds == bestSeconds && rec.Year < best.Year) {
			best = BestResult{Time: rec.Time, Year: rec.Year}
			bestSeconds = seconds
		}
	}

	return best, Outcome{
		NewBest: isNewBest(currentTime, best, bestSeconds, currentYear),
		Delta:   delta(currentTime, bestSeconds),
	}
}

// isNewBest reports whether currentTime beats the best previous time.
// A first-time participant (no usable history) always scores a new
// best. A "previous" record from the current year or later never does.
func isNewBest(currentTime string, best BestResult, bestSeconds, currentYear int) bool {
	if currentTime == "" {
		return false
	}
	if best.Time == "" {
		return true
	}
	if best.Year >= currentYear {
		return false
	}
	currentSeconds, err := timing.ToSeconds(currentTime)
	if err != nil {
		return false
	}
	return currentSeconds < bestSeconds
}

func delta(currentTime string, bestSeconds int) string {
	if currentTime == "" || bestSeconds < 0 {
		return ""
	}
	currentSeconds, err := timing.ToSeconds(currentTime)
	if err != nil {
		return ""
	}
	return timing.FormatDelta(currentSeconds - bestSeconds)
}
