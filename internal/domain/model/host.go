// Package model contains the domain entities shared across ports and adapters.
package model

// HostRecord is one issued certificate, keyed by the recipient's stable id.
// A record is created at most once per id; IssueDate is set at creation and
// never changes afterwards.
type HostRecord struct {
	ID        string `json:"id"`
	IssueDate string `json:"issueDate"`
	Issuer    string `json:"issuer"`
}
