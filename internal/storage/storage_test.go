package storage

import (
	"os"
	"testing"
	"time"

	"github.com/mkleiven/stoltzen-results/internal/result"
	"github.com/mkleiven/stoltzen-results/internal/scraper"
)

func testProfile() *scraper.Profile {
	return &scraper.Profile{
		Name:           "Ola Nordmann",
		CurrentTime:    "7:54",
		Class:          "Menn senior",
		Participations: 5,
		History:        []result.HistoricalRecord{{Year: 2020, Time: "7:40"}},
	}
}

func TestPutGet(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, ok := s.Get("http://stoltzen.no/stat.php?id=102|2024"); ok {
		t.Error("expected miss on empty cache")
	}

	s.Put("http://stoltzen.no/stat.php?id=102|2024", testProfile())

	profile, ok := s.Get("http://stoltzen.no/stat.php?id=102|2024")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if profile.Name != "Ola Nordmann" {
		t.Errorf("Name = %q, expected 'Ola Nordmann'", profile.Name)
	}
}

func TestFlushAndReload(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Put("stat.php?id=102|2024", testProfile())
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	reloaded, err := New(dir)
	if err != nil {
		t.Fatalf("New on existing cache failed: %v", err)
	}
	profile, ok := reloaded.Get("stat.php?id=102|2024")
	if !ok {
		t.Fatal("expected cache hit after reload")
	}
	if len(profile.History) != 1 || profile.History[0].Year != 2020 {
		t.Errorf("history = %+v, expected one record from 2020", profile.History)
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Put("stat.php?id=102|2024", testProfile())

	// Backdate the entry past the TTL
	s.mu.Lock()
	e := s.entries["stat.php?id=102|2024"]
	e.FetchedAt = time.Now().Add(-DefaultTTL - time.Hour)
	s.entries["stat.php?id=102|2024"] = e
	s.mu.Unlock()

	if _, ok := s.Get("stat.php?id=102|2024"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestFlushWithoutChangesIsNoOp(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, err := os.Stat(s.cachePath()); !os.IsNotExist(err) {
		t.Errorf("expected no cache file to be written, stat err = %v", err)
	}
}
