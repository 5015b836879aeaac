// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// maxProfileFetches bounds the concurrent profile lookups per refresh.
const maxProfileFetches = 8

// CandidateService discovers certificate candidates: organizers of elapsed
// events whose login profile opts into engagements. The candidate set is
// rebuilt wholesale on every refresh and published atomically; readers
// never observe a partially built set.
type CandidateService struct {
	feed     driven.EventFeed
	profiles driven.ProfileService
	after    time.Time
	before   time.Time

	refreshMu sync.Mutex // serializes refreshes

	mu         sync.RWMutex
	candidates []string
	details    map[string]model.Profile
}

// NewCandidateService creates a discovery service polling the feed within
// the given date window. Zero bounds leave the window open on that side.
func NewCandidateService(feed driven.EventFeed, profiles driven.ProfileService, after, before time.Time) *CandidateService {
	return &CandidateService{
		feed:     feed,
		profiles: profiles,
		after:    after,
		before:   before,
		details:  make(map[string]model.Profile),
	}
}

// Refresh rebuilds the candidate set from the event feed and returns the
// new candidate ids. A feed failure aborts the refresh and keeps the
// previous set; a profile failure only excludes that organizer from this
// cycle (they are reconsidered on the next one).
func (s *CandidateService) Refresh(ctx context.Context) ([]string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	events, err := s.feed.FetchEvents(ctx, s.after, s.before)
	if err != nil {
		return nil, fmt.Errorf("refresh candidates: %w", err)
	}

	now := time.Now()
	seen := make(map[string]bool, len(events))
	var organizers []string
	for _, ev := range events {
		if ev.OrganizerID == "" || seen[ev.OrganizerID] {
			continue
		}
		if !ev.Elapsed(now) {
			continue
		}
		seen[ev.OrganizerID] = true
		organizers = append(organizers, ev.OrganizerID)
	}

	// Fan out the profile lookups, then wait for the whole batch before
	// publishing anything.
	profiles := make([]*model.Profile, len(organizers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxProfileFetches)
	for i, username := range organizers {
		g.Go(func() error {
			p, err := s.profiles.FetchProfile(gctx, username)
			if err != nil {
				// Fail-open: drop this organizer from the cycle.
				slog.Error("profile fetch failed", "username", username, "error", err)
				return nil
			}
			profiles[i] = p
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]string, 0, len(organizers))
	details := make(map[string]model.Profile, len(organizers))
	for i, username := range organizers {
		p := profiles[i]
		if p == nil || !p.SendEngagements {
			continue
		}
		ids = append(ids, username)
		details[username] = *p
	}

	s.mu.Lock()
	s.candidates = ids
	s.details = details
	s.mu.Unlock()

	slog.Info("candidate set refreshed",
		"events", len(events),
		"organizers", len(organizers),
		"candidates", len(ids),
	)

	return slices.Clone(ids), nil
}

// Get returns a copy of the current candidate ids without refreshing.
func (s *CandidateService) Get() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.candidates)
}

// Details returns the enrichment data for a candidate from the last
// refresh. The second return is false for ids not in the current set.
func (s *CandidateService) Details(username string) (model.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.details[username]
	return p, ok
}
