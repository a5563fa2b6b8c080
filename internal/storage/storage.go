package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mkleiven/stoltzen-results/internal/scraper"
)

// DefaultTTL is how long a cached profile stays valid.
const DefaultTTL = 7 * 24 * time.Hour

const cacheFileName = "profiles.json"

// Storage is a disk-backed profile cache.
type Storage struct {
	dataDir string
	ttl     time.Duration

	mu      sync.Mutex
	entries map[string]entry
	dirty   bool
}

type entry struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Profile   *scraper.Profile `json:"profile"`
}

// New creates a Storage rooted at dataDir, creating the directory if
// needed and loading any existing cache file. A leading ~ expands to
// the home directory.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Storage{
		dataDir: dataDir,
		ttl:     DefaultTTL,
		entries: make(map[string]entry),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) cachePath() string {
	return filepath.Join(s.dataDir, cacheFileName)
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.cachePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading profile cache: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return fmt.Errorf("parsing profile cache: %w", err)
	}
	return nil
}

// Get returns the cached profile for key, if present and not expired.
func (s *Storage) Get(key string) (*scraper.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || time.Since(e.FetchedAt) > s.ttl {
		return nil, false
	}
	return e.Profile, true
}

// Put stores a profile under key. The cache file is only rewritten on
// Flush.
func (s *Storage) Put(key string, profile *scraper.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{FetchedAt: time.Now().UTC(), Profile: profile}
	s.dirty = true
}

// Flush writes the cache to disk, dropping expired entries along the
// way. A cache that saw no Put since loading is left untouched.
func (s *Storage) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	now := time.Now()
	for key, e := range s.entries {
		if now.Sub(e.FetchedAt) > s.ttl {
			delete(s.entries, key)
		}
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile cache: %w", err)
	}
	if err := os.WriteFile(s.cachePath(), data, 0644); err != nil {
		return fmt.Errorf("writing profile cache: %w", err)
	}
	s.dirty = false
	return nil
}
