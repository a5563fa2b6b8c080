package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/mkleiven/stoltzen-results/internal/logger"
	"github.com/mkleiven/stoltzen-results/internal/textenc"
)

const (
	DefaultBaseURL   = "http://stoltzen.no"
	DefaultUserAgent = "stoltzen-results/1.0 (github.com/mkleiven/stoltzen-results)"
	DefaultTimeout   = 10 * time.Second
	DefaultWorkers   = 10

	maxFetchRetries = 3
)

// ProfileCache lets callers plug in persistence for parsed profile
// pages so repeated runs skip refetching. Implementations must be safe
// for concurrent use; the scraper calls them from its worker pool.
type ProfileCache interface {
	Get(key string) (*Profile, bool)
	Put(key string, profile *Profile)
}

// Config carries the scraper settings. Zero values fall back to the
// package defaults.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Workers   int
	Cache     ProfileCache
}

// Scraper fetches and parses stoltzen.no pages.
type Scraper struct {
	client    *http.Client
	baseURL   string
	userAgent string
	workers   int
	cache     ProfileCache
}

// New creates a Scraper from cfg, filling in defaults for unset fields.
func New(cfg Config) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Scraper{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		workers:   cfg.Workers,
		cache:     cfg.Cache,
	}
}

// fetchDocument GETs pageURL and parses the body into a goquery
// document, decoding legacy charsets along the way. Transient failures
// (network errors, 5xx) are retried with exponential backoff; anything
// else fails immediately.
func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", s.userAgent)
		req.Header.Set("Accept-Charset", "utf-8,iso-8859-1;q=0.7")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("server error: %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		body := textenc.NewReader(resp.Body, resp.Header.Get("Content-Type"))
		d, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("parsing HTML: %w", err))
		}
		doc = d
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxFetchRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		logger.IncrCounter("scrape.fetch_errors")
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	return doc, nil
}

// absoluteURL resolves a profile link relative to the configured base
// URL. Already-absolute links pass through.
func (s *Scraper) absoluteURL(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return s.baseURL + "/" + strings.TrimLeft(link, "/")
}
