package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkleiven/stoltzen-results/internal/logger"
	"github.com/mkleiven/stoltzen-results/internal/result"
)

// EnrichParticipants fetches each participant's profile page and fills
// in the personal-best fields against the evaluation year. Profiles
// are fetched by a bounded pool of workers; each participant is owned
// by exactly one worker, so no locking is needed on the records
// themselves. Participants without a profile link, and those whose
// profile fetch fails, keep their absent history fields.
func (s *Scraper) EnrichParticipants(ctx context.Context, participants []*result.Participant, year int) {
	jobs := make(chan *result.Participant)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				s.enrichOne(ctx, p, year)
			}
		}()
	}

	for _, p := range participants {
		if p.ProfileLink == "" {
			continue
		}
		jobs <- p
	}
	close(jobs)
	wg.Wait()
}

func (s *Scraper) enrichOne(ctx context.Context, p *result.Participant, year int) {
	start := time.Now()
	profile, err := s.FetchProfile(ctx, p.ProfileLink, year)
	if err != nil {
		logger.Warn("profile fetch failed", logger.Fields{
			"name": p.Navn,
			"url":  p.ProfileLink,
		})
		logger.IncrCounter("scrape.profile_errors")
		return
	}

	if p.Deltagelser == 0 {
		p.Deltagelser = profile.Participations
	}
	p.ApplyHistory(profile.History, year)

	logger.RecordTiming("scrape.profile_fetch", time.Since(start))
	logger.IncrCounter("scrape.profiles")
}

// FetchProfiles builds full participant records straight from stat.php
// URLs, using the same bounded worker pool. Profiles missing a name or
// a current-year time are dropped; the returned order follows
// completion, so callers sort before output.
func (s *Scraper) FetchProfiles(ctx context.Context, urls []string, year int) []*result.Participant {
	jobs := make(chan string)
	var mu sync.Mutex
	participants := make([]*result.Participant, 0, len(urls))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageURL := range jobs {
				p, err := s.FetchProfileParticipant(ctx, pageURL, year)
				if err != nil {
					logger.Warn("skipping profile", logger.Fields{"url": pageURL, "reason": err.Error()})
					logger.IncrCounter("scrape.profile_errors")
					continue
				}
				mu.Lock()
				participants = append(participants, p)
				mu.Unlock()
				logger.IncrCounter("scrape.profiles")
			}
		}()
	}

	for _, pageURL := range urls {
		jobs <- pageURL
	}
	close(jobs)
	wg.Wait()

	return participants
}

// FetchProfileParticipant fetches one stat.php URL and resolves it
// into a complete participant record.
func (s *Scraper) FetchProfileParticipant(ctx context.Context, pageURL string, year int) (*result.Participant, error) {
	profile, err := s.FetchProfile(ctx, pageURL, year)
	if err != nil {
		return nil, err
	}
	if profile.Name == "" || profile.CurrentTime == "" {
		return nil, fmt.Errorf("incomplete profile data at %s", pageURL)
	}

	p := &result.Participant{
		Gruppe:      result.ClassifyGroup(profile.Class),
		Navn:        profile.Name,
		Tid:         profile.CurrentTime,
		Klasse:      profile.Class,
		Deltagelser: profile.Participations,
		ProfileLink: pageURL,
	}
	p.ApplyHistory(profile.History, year)
	return p, nil
}
