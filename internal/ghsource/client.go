// Package ghsource reads repositories, branches, and commits from the
// GitHub API.
package ghsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/loamlabs/branchwatch/internal/constants"
	"github.com/loamlabs/branchwatch/internal/log"
	"github.com/loamlabs/branchwatch/internal/model"
	"github.com/loamlabs/branchwatch/internal/scan"
	"golang.org/x/oauth2"
)

// rateLimitTransport wraps an http.RoundTripper to handle GitHub rate limits
type rateLimitTransport struct {
	base  http.RoundTripper
	state *rateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Check if we're already rate limited before making the request
	if t.state.isLimited() {
		return nil, ErrRateLimited
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		t.state.update(remaining, limit, resetAt)
	}

	if remaining <= constants.RateLimitLowWatermark && remaining > 0 {
		log.Debug("rate limit low", "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	// Rate limit responses arrive as 403 with an exhausted quota or as 429
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			t.state.setLimited(resetAt)
			_ = resp.Body.Close()
			return nil, ErrRateLimited
		}
	}

	return resp, nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	if remainingStr := resp.Header.Get("X-RateLimit-Remaining"); remainingStr != "" {
		if rem, err := strconv.Atoi(remainingStr); err == nil {
			remaining = rem
		}
	}

	if limitStr := resp.Header.Get("X-RateLimit-Limit"); limitStr != "" {
		if lim, err := strconv.Atoi(limitStr); err == nil {
			limit = lim
		}
	}

	if resetStr := resp.Header.Get("X-RateLimit-Reset"); resetStr != "" {
		if resetTime, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			resetAt = time.Unix(resetTime, 0)
		}
	}

	return remaining, limit, resetAt
}

// Client reads branch data for a single account through the GitHub API.
type Client struct {
	client *gh.Client
	owner  string
}

// Ensure Client implements the scan.Source interface.
var _ scan.Source = (*Client)(nil)

// NewClient creates a GitHub-backed source for repositories owned by owner,
// authenticated with a personal access token.
func NewClient(ctx context.Context, token, owner string) (*Client, error) {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token not provided. Set the GITHUB_TOKEN environment variable")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	// Wrap transport with rate limit handling
	tc.Transport = &rateLimitTransport{
		base:  tc.Transport,
		state: &rateLimitState{},
	}

	return &Client{
		client: gh.NewClient(tc),
		owner:  owner,
	}, nil
}

// AuthenticatedUser returns the authenticated user's login
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// GetRepository looks up a repository by name under the client's account.
func (c *Client) GetRepository(ctx context.Context, name string) (model.Repo, error) {
	repo, _, err := c.client.Repositories.Get(ctx, c.owner, name)
	if err != nil {
		if isNotFound(err) {
			return model.Repo{}, fmt.Errorf("repository %s/%s: %w", c.owner, name, model.ErrNotFound)
		}
		return model.Repo{}, fmt.Errorf("failed to get repository %s/%s: %w", c.owner, name, err)
	}
	return model.Repo{
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		HTMLURL:  repo.GetHTMLURL(),
	}, nil
}

// ListBranches returns every branch of the repository.
func (c *Client) ListBranches(ctx context.Context, repo model.Repo) ([]model.Branch, error) {
	opts := &gh.BranchListOptions{
		ListOptions: gh.ListOptions{PerPage: constants.PerPage},
	}

	var branches []model.Branch
	for {
		page, resp, err := c.client.Repositories.ListBranches(ctx, c.owner, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list branches for %s: %w", repo.Name, err)
		}

		for _, b := range page {
			branches = append(branches, model.Branch{
				Name: b.GetName(),
				SHA:  b.GetCommit().GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return branches, nil
}

// GetBranch fetches a single branch by name.
func (c *Client) GetBranch(ctx context.Context, repo model.Repo, name string) (model.Branch, error) {
	branch, resp, err := c.client.Repositories.GetBranch(ctx, c.owner, repo.Name, name, 0)
	if err != nil {
		// GetBranch reports missing branches as a bare status error, not an
		// ErrorResponse, so the status has to be read off the response.
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return model.Branch{}, fmt.Errorf("branch %s on %s: %w", name, repo.Name, model.ErrNotFound)
		}
		return model.Branch{}, fmt.Errorf("failed to get branch %s on %s: %w", name, repo.Name, err)
	}
	return model.Branch{
		Name: branch.GetName(),
		SHA:  branch.GetCommit().GetSHA(),
	}, nil
}

// Compare reports how head relates to base.
func (c *Client) Compare(ctx context.Context, repo model.Repo, base, head string) (model.Comparison, error) {
	// Only the status and counts are used, not the commit list
	opts := &gh.ListOptions{PerPage: 1}
	cmp, _, err := c.client.Repositories.CompareCommits(ctx, c.owner, repo.Name, base, head, opts)
	if err != nil {
		return model.Comparison{}, fmt.Errorf("failed to compare %s...%s on %s: %w", base, head, repo.Name, err)
	}
	return model.Comparison{
		Status:   model.CompareStatus(cmp.GetStatus()),
		AheadBy:  cmp.GetAheadBy(),
		BehindBy: cmp.GetBehindBy(),
	}, nil
}

// CommitAuthor resolves the author of a commit, preferring the GitHub login
// and falling back to the git author name.
func (c *Client) CommitAuthor(ctx context.Context, repo model.Repo, sha string) (model.CommitInfo, error) {
	commit, _, err := c.client.Repositories.GetCommit(ctx, c.owner, repo.Name, sha, &gh.ListOptions{PerPage: 1})
	if err != nil {
		return model.CommitInfo{}, fmt.Errorf("failed to get commit %s on %s: %w", sha, repo.Name, err)
	}

	author := commit.GetAuthor().GetLogin()
	if author == "" {
		author = commit.GetCommit().GetAuthor().GetName()
	}
	return model.CommitInfo{
		Author: author,
		When:   commit.GetCommit().GetAuthor().GetDate().Time,
	}, nil
}

// isNotFound reports whether err is a GitHub API 404.
func isNotFound(err error) bool {
	var ghErr *gh.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
