package model

import "time"

// Event is a community event from the external events platform. Only the
// fields needed for candidate eligibility are mapped.
type Event struct {
	ID          string
	OrganizerID string
	BeginDate   time.Time // zero when the feed omitted it
	EndDate     time.Time // zero when the event has no end date
}

// Elapsed reports whether the event has finished relative to now. An event
// with an end date is elapsed once that date has passed; an event without
// one falls back to its begin date. Events with neither date are never
// elapsed.
func (e Event) Elapsed(now time.Time) bool {
	if !e.EndDate.IsZero() {
		return !e.EndDate.After(now)
	}
	if !e.BeginDate.IsZero() {
		return !e.BeginDate.After(now)
	}
	return false
}
