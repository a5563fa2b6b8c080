// Package timing normalizes and compares the loosely formatted duration
// strings found on stoltzen.no result pages.
//
// The site mixes "." and ":" as separators and uses two different
// three-group layouts for the same visual shape: "07.54.23" is a
// short-course time of 7 minutes 54.23 seconds, while "1.23.45" is a
// long-course time of 1 hour 23 minutes 45 seconds. Parse resolves that
// ambiguity into a canonical "M:SS" or "H:MM:SS" string, and ToSeconds
// turns a canonical string into total seconds for ordering. All
// functions are pure and safe for concurrent use.
package timing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	threeGroupPattern = regexp.MustCompile(`(\d{1,3})[.:](\d{2})[.:](\d{2})`)
	twoGroupPattern   = regexp.MustCompile(`(\d{1,3})[.:](\d{2})`)
	separatorPattern  = regexp.MustCompile(`[.:]`)
)

// Parse normalizes a raw time token into canonical form. The leading
// group is emitted unpadded; the remaining groups keep their two
// digits. Empty input yields "". A token matching no known layout is
// returned unchanged so callers can still carry it through to output;
// ToSeconds reports such values as incomparable.
//
// Three-group disambiguation:
//   - leading group above 23: minutes:seconds:hundredths, the
//     hundredths are dropped ("45.12.89" -> "45:12")
//   - leading group written with a zero pad: the site's short-course
//     minutes:seconds.hundredths layout ("07.54.23" -> "7:54")
//   - leading group zero: minutes:seconds ("0.54.23" -> "54:23")
//   - otherwise hours:minutes:seconds ("1.23.45" -> "1:23:45")
func Parse(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if m := threeGroupPattern.FindStringSubmatch(raw); m != nil {
		first, _ := strconv.Atoi(m[1])
		switch {
		case first > 23:
			return fmt.Sprintf("%d:%s", first, m[2])
		case first == 0:
			return fmt.Sprintf("%s:%s", m[2], m[3])
		case len(m[1]) > 1 && m[1][0] == '0':
			return fmt.Sprintf("%d:%s", first, m[2])
		default:
			return fmt.Sprintf("%d:%s:%s", first, m[2], m[3])
		}
	}

	if m := twoGroupPattern.FindStringSubmatch(raw); m != nil {
		first, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%d:%s", first, m[2])
	}

	return raw
}

// ToSeconds converts a canonical time string to total seconds. Two
// groups are minutes:seconds. For three groups a leading value above
// 59 cannot be an hour count and is read as minutes:seconds:hundredths
// with the hundredths dropped; 59 or below is hours:minutes:seconds.
// The threshold is applied here and nowhere else, so a leading 60 is
// always minutes. Malformed input returns an error; callers treat such
// values as incomparable and sort them last.
func ToSeconds(canonical string) (int, error) {
	parts := separatorPattern.Split(strings.TrimSpace(canonical), -1)
	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("non-numeric time component %q in %q", part, canonical)
		}
		nums[i] = n
	}

	switch len(nums) {
	case 2:
		return nums[0]*60 + nums[1], nil
	case 3:
		if nums[0] > 59 {
			return nums[0]*60 + nums[1], nil
		}
		return nums[0]*3600 + nums[1]*60 + nums[2], nil
	}
	return 0, fmt.Errorf("unexpected time format %q", canonical)
}

// FormatDelta renders a signed difference in seconds as "±M:SS" with
// the seconds zero-padded and the minutes unpadded (they may exceed
// 59). A zero difference is the literal "0:00".
func FormatDelta(diffSeconds int) string {
	if diffSeconds == 0 {
		return "0:00"
	}
	sign := "+"
	if diffSeconds < 0 {
		sign = "-"
		diffSeconds = -diffSeconds
	}
	return fmt.Sprintf("%s%d:%02d", sign, diffSeconds/60, diffSeconds%60)
}
