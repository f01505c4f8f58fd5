package scan

import (
	"context"

	"github.com/loamlabs/branchwatch/internal/model"
)

// Source provides repository and branch access for the engine.
// Implementations exist for the GitHub API and for local clones.
type Source interface {
	// GetRepository resolves a configured repository name.
	// Returns model.ErrNotFound when the repository does not exist.
	GetRepository(ctx context.Context, name string) (model.Repo, error)

	// ListBranches returns every branch head in the repository.
	ListBranches(ctx context.Context, repo model.Repo) ([]model.Branch, error)

	// GetBranch fetches a single branch head by name.
	// Returns model.ErrNotFound when the branch does not exist.
	GetBranch(ctx context.Context, repo model.Repo, name string) (model.Branch, error)

	// Compare measures how head relates to base.
	Compare(ctx context.Context, repo model.Repo, base, head string) (model.Comparison, error)

	// CommitAuthor resolves the author identity and timestamp of a commit.
	CommitAuthor(ctx context.Context, repo model.Repo, sha string) (model.CommitInfo, error)
}

// StatusResolver looks up ticket workflow status in the issue tracker.
type StatusResolver interface {
	// ResolveStatus returns the status name of a ticket, e.g. "Resolved".
	// Returns model.ErrNotFound when the tracker does not know the ticket.
	ResolveStatus(ctx context.Context, ticket string) (string, error)
}
