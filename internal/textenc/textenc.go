// Package textenc repairs Norwegian text scraped from pages that serve
// an unreliable mix of UTF-8 and ISO-8859-1. It guarantees the rest of
// the program only ever sees clean UTF-8.
package textenc

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// mojibake maps the common UTF-8-decoded-as-Latin-1 sequences for the
// Norwegian letters back to the letters themselves.
var mojibake = strings.NewReplacer(
	"Ã¦", "æ",
	"Ã¸", "ø",
	"Ã¥", "å",
	"Ã†", "Æ",
	"Ã˜", "Ø",
	"Ã…", "Å",
	"Ã©", "é",
	"Ã¶", "ö",
	"Ã¤", "ä",
)

// NewReader wraps r with a decoder when the Content-Type header names
// a legacy charset. UTF-8 and unknown charsets pass through untouched.
func NewReader(r io.Reader, contentType string) io.Reader {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "iso-8859-1"), strings.Contains(ct, "latin1"):
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case strings.Contains(ct, "windows-1252"):
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	return r
}

// Repair fixes mojibake in a string that is already valid UTF-8.
// Correctly encoded text comes back unchanged.
func Repair(s string) string {
	if s == "" {
		return s
	}
	s = mojibake.Replace(s)
	if fixed, ok := redecode(s); ok {
		return fixed
	}
	return s
}

// redecode undoes text that was UTF-8 but got decoded once too often as
// Latin-1: re-encode to Latin-1 bytes and reinterpret them as UTF-8.
// The result is kept only when it is valid UTF-8 and actually produces
// Norwegian letters, so already-correct text is never mangled.
func redecode(s string) (string, bool) {
	hasHigh := false
	for _, r := range s {
		if r > 127 {
			hasHigh = true
			break
		}
	}
	if !hasHigh {
		return "", false
	}

	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return "", false
	}
	if !utf8.Valid(b) {
		return "", false
	}
	fixed := string(b)
	if !strings.ContainsAny(fixed, "æøåÆØÅ") {
		return "", false
	}
	return fixed, true
}
