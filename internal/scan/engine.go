// Package scan implements the staleness engine: it walks configured
// repositories, compares candidate branches against the integration
// branch, consults the issue tracker, and assembles the aggregate report.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loamlabs/branchwatch/internal/log"
	"github.com/loamlabs/branchwatch/internal/model"
)

// Integration branch candidates, in preference order.
const (
	branchDevelop = "develop"
	branchMaster  = "master"
)

// Config controls which branches the engine examines and when a ticket
// no longer protects a branch from a stale verdict.
type Config struct {
	// Prefixes are the branch name prefixes considered for staleness.
	Prefixes []string

	// DoneStatuses are the ticket statuses treated as completed work.
	// Matching is exact, preserving the tracker's own labels.
	DoneStatuses []string

	// MinAge, when positive, excludes branches whose last commit is more
	// recent than this duration. Zero keeps every behind branch.
	MinAge time.Duration

	// Workers is the number of repositories scanned concurrently.
	// Values below one scan sequentially.
	Workers int
}

// ProgressFunc receives scan progress: repositories finished out of total
// and the name of the repository that just completed. It may be called
// from multiple goroutines when Workers is greater than one.
type ProgressFunc func(done, total int, repo string)

// Engine applies the staleness rules to a set of repositories.
type Engine struct {
	source   Source
	tickets  StatusResolver
	cfg      Config
	progress ProgressFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress registers a callback invoked as repositories finish.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// New creates an Engine over a branch source and a ticket resolver.
// Both are required.
func New(source Source, tickets StatusResolver, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		source:  source,
		tickets: tickets,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan examines every repository and assembles the aggregate report.
// Repository results keep the input order regardless of scan scheduling,
// so sequential and concurrent runs produce identical reports.
//
// Individual repository and branch failures are logged and skipped; Scan
// itself fails only when the context is canceled.
func (e *Engine) Scan(ctx context.Context, repos []string) (*model.Report, error) {
	results := make([]model.RepoReport, len(repos))

	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	if workers == 1 {
		for i, name := range repos {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = e.scanRepository(ctx, name)
			e.reportProgress(i+1, len(repos), name)
		}
	} else {
		var finished atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, name := range repos {
			i, name := i, name
			g.Go(func() error {
				results[i] = e.scanRepository(gctx, name)
				e.reportProgress(int(finished.Add(1)), len(repos), name)
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return e.aggregate(results), nil
}

// scanRepository walks one repository. Failures below the repository
// level never propagate: they are logged and the repository contributes
// however many entries were found before the failure.
func (e *Engine) scanRepository(ctx context.Context, name string) model.RepoReport {
	rr := model.RepoReport{Repo: model.Repo{Name: name}}

	repo, err := e.source.GetRepository(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			log.Error("repository not found, skipping", "repo", name)
		} else {
			log.Error("failed to look up repository, skipping", "repo", name, "error", err)
		}
		return rr
	}
	rr.Repo = repo

	main, err := e.integrationBranch(ctx, repo)
	if err != nil {
		log.Error("no integration branch, skipping repository", "repo", repo.Name, "error", err)
		return rr
	}
	rr.MainBranch = main.Name

	branches, err := e.source.ListBranches(ctx, repo)
	if err != nil {
		log.Error("failed to list branches, skipping repository", "repo", repo.Name, "error", err)
		return rr
	}
	log.Debug("scanning repository", "repo", repo.Name, "base", main.Name, "branches", len(branches))

	for _, br := range branches {
		prefix, ok := MatchPrefix(br.Name, e.cfg.Prefixes)
		if !ok {
			continue
		}
		if entry, stale := e.examineBranch(ctx, repo, main.Name, br, prefix); stale {
			rr.Stale = append(rr.Stale, entry)
		}
	}

	log.Info("repository scanned", "repo", repo.Name, "stale", len(rr.Stale))
	return rr
}

// integrationBranch resolves the branch candidates are measured against,
// preferring develop and falling back to master.
func (e *Engine) integrationBranch(ctx context.Context, repo model.Repo) (model.Branch, error) {
	br, err := e.source.GetBranch(ctx, repo, branchDevelop)
	if err == nil {
		return br, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Branch{}, fmt.Errorf("failed to resolve %s: %w", branchDevelop, err)
	}

	log.Debug("develop missing, falling back to master", "repo", repo.Name)
	br, err = e.source.GetBranch(ctx, repo, branchMaster)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Branch{}, errors.New("neither develop nor master exists")
		}
		return model.Branch{}, fmt.Errorf("failed to resolve %s: %w", branchMaster, err)
	}
	return br, nil
}

// examineBranch applies the staleness rules to one candidate branch.
// stale is false when the branch is excluded: fully merged, protected by
// an open ticket, recently active, or skipped after a comparison failure.
func (e *Engine) examineBranch(ctx context.Context, repo model.Repo, base string, br model.Branch, prefix string) (entry model.StaleBranch, stale bool) {
	cmp, err := e.source.Compare(ctx, repo, base, br.Name)
	if err != nil {
		log.Warn("failed to compare branch, skipping", "repo", repo.Name, "branch", br.Name, "error", err)
		return model.StaleBranch{}, false
	}
	if cmp.BehindBy == 0 {
		// Fully merged or tracking the integration branch: done, not stale.
		log.Debug("branch not behind", "repo", repo.Name, "branch", br.Name, "status", cmp.Status)
		return model.StaleBranch{}, false
	}

	entry = model.StaleBranch{
		Name:     br.Name,
		Status:   cmp.Status,
		BehindBy: cmp.BehindBy,
		Author:   model.UnknownAuthor,
	}

	if key, ok := ExtractTicket(br.Name, prefix); ok {
		entry.Ticket = key
		status, err := e.tickets.ResolveStatus(ctx, key)
		switch {
		case errors.Is(err, model.ErrNotFound):
			// No ticket in the tracker, nothing protects the branch.
			log.Debug("ticket not found", "ticket", key, "branch", br.Name)
		case err != nil:
			// A failed lookup must not protect the branch either.
			log.Warn("ticket lookup failed", "ticket", key, "branch", br.Name, "error", err)
		case !e.isDone(status):
			log.Debug("ticket still open, keeping branch", "ticket", key, "status", status, "branch", br.Name)
			return model.StaleBranch{}, false
		default:
			entry.TicketStatus = status
		}
	}

	// The stale verdict is reached before author resolution so that API
	// traffic stays proportional to findings, not to branch count.
	if info, err := e.source.CommitAuthor(ctx, repo, br.SHA); err != nil {
		log.Debug("could not resolve branch author", "repo", repo.Name, "branch", br.Name, "error", err)
	} else {
		if info.Author != "" {
			entry.Author = info.Author
		}
		entry.LastCommit = info.When
	}

	if e.cfg.MinAge > 0 && !entry.LastCommit.IsZero() && time.Since(entry.LastCommit) < e.cfg.MinAge {
		log.Debug("branch has recent activity, keeping", "repo", repo.Name, "branch", br.Name)
		return model.StaleBranch{}, false
	}

	return entry, true
}

// isDone reports whether a ticket status counts as completed work.
func (e *Engine) isDone(status string) bool {
	for _, s := range e.cfg.DoneStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// aggregate folds per-repository results into the final report. The
// author tally is sorted by count descending; authors with equal counts
// keep first-encounter order.
func (e *Engine) aggregate(results []model.RepoReport) *model.Report {
	report := &model.Report{
		GeneratedAt: time.Now(),
		Repos:       results,
	}

	counts := make(map[string]int)
	var order []string
	for _, rr := range results {
		for _, sb := range rr.Stale {
			report.Total++
			if counts[sb.Author] == 0 {
				order = append(order, sb.Author)
			}
			counts[sb.Author]++
		}
	}

	report.Authors = make([]model.AuthorCount, 0, len(order))
	for _, author := range order {
		report.Authors = append(report.Authors, model.AuthorCount{Author: author, Count: counts[author]})
	}
	sort.SliceStable(report.Authors, func(i, j int) bool {
		return report.Authors[i].Count > report.Authors[j].Count
	})

	return report
}

func (e *Engine) reportProgress(done, total int, repo string) {
	if e.progress != nil {
		e.progress(done, total, repo)
	}
}
