package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkleiven/stoltzen-results/internal/result"
)

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func TestParseResults(t *testing.T) {
	s := New(Config{})
	participants, err := s.parseResults(loadFixture(t, "results.html"))
	if err != nil {
		t.Fatalf("parseResults failed: %v", err)
	}

	// The DNS row has no position number and must be skipped
	if len(participants) != 4 {
		t.Fatalf("expected 4 participants, got %d", len(participants))
	}

	first := participants[0]
	if first.Navn != "Kari Nordmann" {
		t.Errorf("expected first participant 'Kari Nordmann', got %q", first.Navn)
	}
	if first.Tid != "8:02" {
		t.Errorf("expected normalized time '8:02', got %q", first.Tid)
	}
	if first.Gruppe != result.GroupDame {
		t.Errorf("expected group %q, got %q", result.GroupDame, first.Gruppe)
	}
	if first.ProfileLink != "stat.php?id=101" {
		t.Errorf("expected profile link, got %q", first.ProfileLink)
	}

	wantGroups := map[string]result.Group{
		"Kari Nordmann":   result.GroupDame,
		"Ola Nordmann":    result.GroupMann,
		"Per Hansen":      result.GroupPluss,
		"Nils Uten Lenke": result.GroupMann,
	}
	for _, p := range participants {
		if want, ok := wantGroups[p.Navn]; !ok {
			t.Errorf("unexpected participant %q", p.Navn)
		} else if p.Gruppe != want {
			t.Errorf("%s: group = %q, expected %q", p.Navn, p.Gruppe, want)
		}
	}

	// A row without a stat.php link still parses, just unenrichable
	for _, p := range participants {
		if p.Navn == "Nils Uten Lenke" {
			if p.ProfileLink != "" {
				t.Errorf("expected empty profile link, got %q", p.ProfileLink)
			}
			if p.Tid != "10:15" {
				t.Errorf("expected time '10:15', got %q", p.Tid)
			}
		}
	}
}

func TestParseResultsNoTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>tom side</p></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{})
	if _, err := s.parseResults(doc); err == nil {
		t.Error("expected error for page without results table")
	}
}

func TestParseProfile(t *testing.T) {
	profile := parseProfile(loadFixture(t, "profile.html"), 2024)

	if profile.Name != "Ola Nordmann" {
		t.Errorf("Name = %q, expected 'Ola Nordmann'", profile.Name)
	}
	if profile.CurrentTime != "7:54" {
		t.Errorf("CurrentTime = %q, expected '7:54'", profile.CurrentTime)
	}
	if profile.Class != "Menn senior" {
		t.Errorf("Class = %q, expected 'Menn senior'", profile.Class)
	}
	if profile.Participations != 5 {
		t.Errorf("Participations = %d, expected 5", profile.Participations)
	}

	// The personal_best cell is authoritative: the yearly rows must not
	// be re-collected on top of it
	if len(profile.History) != 1 {
		t.Fatalf("expected 1 historical record, got %d", len(profile.History))
	}
	if profile.History[0].Year != 2020 || profile.History[0].Time != "7:40" {
		t.Errorf("history = %+v, expected {2020 7:40}", profile.History[0])
	}
}

func TestParseProfileFallback(t *testing.T) {
	profile := parseProfile(loadFixture(t, "profile_fallback.html"), 2024)

	if profile.Name != "Kari Nordmann" {
		t.Errorf("Name = %q, expected 'Kari Nordmann'", profile.Name)
	}
	if profile.CurrentTime != "8:02" {
		t.Errorf("CurrentTime = %q, expected '8:02'", profile.CurrentTime)
	}
	if profile.Class != "Kvinner senior" {
		t.Errorf("Class = %q, expected 'Kvinner senior'", profile.Class)
	}
	if profile.Participations != 3 {
		t.Errorf("Participations = %d, expected 3", profile.Participations)
	}

	if len(profile.History) != 2 {
		t.Fatalf("expected 2 historical records, got %+v", profile.History)
	}
	years := map[int]string{}
	for _, rec := range profile.History {
		years[rec.Year] = rec.Time
	}
	if years[2019] != "8:30" || years[2018] != "8:45" {
		t.Errorf("history = %+v, expected 2019->8:30 and 2018->8:45", years)
	}
}

func TestAbsoluteURL(t *testing.T) {
	s := New(Config{BaseURL: "http://stoltzen.no"})

	tests := []struct {
		link     string
		expected string
	}{
		{"stat.php?id=101", "http://stoltzen.no/stat.php?id=101"},
		{"/stat.php?id=101", "http://stoltzen.no/stat.php?id=101"},
		{"http://stoltzen.no/stat.php?id=101", "http://stoltzen.no/stat.php?id=101"},
		{"https://stoltzen.no/stat.php?id=101", "https://stoltzen.no/stat.php?id=101"},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			if got := s.absoluteURL(tt.link); got != tt.expected {
				t.Errorf("absoluteURL(%q) = %q, expected %q", tt.link, got, tt.expected)
			}
		})
	}
}

func TestEnrichParticipants(t *testing.T) {
	page, err := os.ReadFile("testdata/profile.html")
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL, Workers: 4})
	participants := []*result.Participant{
		{Navn: "Ola Nordmann", Tid: "7:54", ProfileLink: "stat.php?id=102"},
		{Navn: "Uten Lenke", Tid: "9:10"},
	}

	s.EnrichParticipants(context.Background(), participants, 2024)

	enriched := participants[0]
	if enriched.BesteTidligere != "7:40" || enriched.BesteAar != 2020 {
		t.Errorf("best = %q (%d), expected 7:40 (2020)", enriched.BesteTidligere, enriched.BesteAar)
	}
	if enriched.NyBestetid {
		t.Error("expected NyBestetid=false, 7:54 is slower than 7:40")
	}
	if enriched.Differanse != "+0:14" {
		t.Errorf("Differanse = %q, expected '+0:14'", enriched.Differanse)
	}
	if enriched.Deltagelser != 5 {
		t.Errorf("Deltagelser = %d, expected 5", enriched.Deltagelser)
	}

	unlinked := participants[1]
	if unlinked.BesteTidligere != "" || unlinked.NyBestetid {
		t.Errorf("participant without profile link must keep absent history, got %+v", unlinked)
	}
}

// mapCache is a minimal in-memory ProfileCache for tests.
type mapCache struct {
	mu       sync.Mutex
	profiles map[string]*Profile
}

func (c *mapCache) Get(key string) (*Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[key]
	return p, ok
}

func (c *mapCache) Put(key string, profile *Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[key] = profile
}

func TestFetchProfileUsesCache(t *testing.T) {
	page, err := os.ReadFile("testdata/profile.html")
	if err != nil {
		t.Fatal(err)
	}

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}))
	defer server.Close()

	cache := &mapCache{profiles: make(map[string]*Profile)}
	s := New(Config{BaseURL: server.URL, Cache: cache})

	for i := 0; i < 3; i++ {
		profile, err := s.FetchProfile(context.Background(), "stat.php?id=102", 2024)
		if err != nil {
			t.Fatalf("FetchProfile failed: %v", err)
		}
		if profile.Name != "Ola Nordmann" {
			t.Errorf("Name = %q, expected 'Ola Nordmann'", profile.Name)
		}
	}

	if requests != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
}

func TestFetchProfilesBuildsParticipants(t *testing.T) {
	page, err := os.ReadFile("testdata/profile_fallback.html")
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL, Workers: 2})
	participants := s.FetchProfiles(context.Background(),
		[]string{server.URL + "/stat.php?id=101"}, 2024)

	if len(participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(participants))
	}
	p := participants[0]
	if p.Navn != "Kari Nordmann" || p.Tid != "8:02" {
		t.Errorf("participant = %+v, expected Kari Nordmann / 8:02", p)
	}
	if p.Gruppe != result.GroupDame {
		t.Errorf("Gruppe = %q, expected %q", p.Gruppe, result.GroupDame)
	}
	if p.BesteTidligere != "8:30" || p.BesteAar != 2019 {
		t.Errorf("best = %q (%d), expected 8:30 (2019)", p.BesteTidligere, p.BesteAar)
	}
	if !p.NyBestetid {
		t.Error("expected NyBestetid=true, 8:02 beats 8:30")
	}
	if p.Differanse != "-0:28" {
		t.Errorf("Differanse = %q, expected '-0:28'", p.Differanse)
	}
}
