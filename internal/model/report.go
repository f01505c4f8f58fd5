// Package model contains domain types for the branchwatch application.
// These types are independent of any source-control or tracker library.
package model

import "time"

// CompareStatus labels how a branch head relates to the integration branch.
type CompareStatus string

const (
	CompareIdentical CompareStatus = "identical"
	CompareAhead     CompareStatus = "ahead"
	CompareBehind    CompareStatus = "behind"
	CompareDiverged  CompareStatus = "diverged"
)

// StatusFor derives a CompareStatus from ahead/behind commit counts.
func StatusFor(ahead, behind int) CompareStatus {
	switch {
	case ahead > 0 && behind > 0:
		return CompareDiverged
	case ahead > 0:
		return CompareAhead
	case behind > 0:
		return CompareBehind
	default:
		return CompareIdentical
	}
}

// UnknownAuthor is recorded when a branch head has no attributable author.
const UnknownAuthor = "unknown"

// Repo identifies a scanned repository.
type Repo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url,omitempty"`
}

// Branch is a branch head as listed by a source.
type Branch struct {
	Name string `json:"name"`
	SHA  string `json:"sha,omitempty"`
}

// Comparison describes the divergence of a branch from the integration
// branch. BehindBy zero means the branch is fully merged or up to date.
type Comparison struct {
	Status   CompareStatus `json:"status"`
	AheadBy  int           `json:"ahead_by"`
	BehindBy int           `json:"behind_by"`
}

// CommitInfo carries the author identity and timestamp of a single commit.
type CommitInfo struct {
	Author string    `json:"author"`
	When   time.Time `json:"when"`
}

// StaleBranch is one entry in a repository report: a branch that has fallen
// behind its integration branch with no open ticket protecting it.
type StaleBranch struct {
	Name         string        `json:"name"`
	Status       CompareStatus `json:"status"`
	BehindBy     int           `json:"behind_by"`
	Author       string        `json:"author"`
	LastCommit   time.Time     `json:"last_commit"`
	Ticket       string        `json:"ticket,omitempty"`
	TicketStatus string        `json:"ticket_status,omitempty"`
}

// RepoReport collects the stale branches found in one repository.
// MainBranch is empty when the repository was skipped (not found, or no
// develop/master branch to compare against).
type RepoReport struct {
	Repo       Repo          `json:"repo"`
	MainBranch string        `json:"main_branch,omitempty"`
	Stale      []StaleBranch `json:"stale,omitempty"`
}

// HasStale reports whether this repository contributes entries to the report.
func (r RepoReport) HasStale() bool {
	return len(r.Stale) > 0
}

// AuthorCount is one row of the per-author tally.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// Report is the aggregate result of a single scan. It is built fresh per
// run; Repos preserves the configured input order regardless of how the
// scan was scheduled.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Total       int           `json:"total"`
	Authors     []AuthorCount `json:"authors,omitempty"`
	Repos       []RepoReport  `json:"repos"`
}
