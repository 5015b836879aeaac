package model

// Profile is the enrichment data the login service holds for an event
// organizer. SendEngagements is the user's opt-in for engagement mail;
// organizers without it never become certificate candidates.
type Profile struct {
	Username        string
	Email           string
	Locale          string
	SendEngagements bool
}
