// Package gitsource reads repositories and branches from local git clones
// laid out as subdirectories of a root directory.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/loamlabs/branchwatch/internal/model"
	"github.com/loamlabs/branchwatch/internal/scan"
)

// Local reads branch data from clones under a root directory. Repository
// names map to directory names.
type Local struct {
	root string
}

// Ensure Local implements the scan.Source interface.
var _ scan.Source = (*Local)(nil)

// New creates a source rooted at the given directory.
func New(root string) *Local {
	return &Local{root: root}
}

func (l *Local) open(name string) (*git.Repository, error) {
	repo, err := git.PlainOpen(filepath.Join(l.root, name))
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("repository %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open repository %s: %w", name, err)
	}
	return repo, nil
}

// GetRepository checks that a clone exists for the given name.
func (l *Local) GetRepository(_ context.Context, name string) (model.Repo, error) {
	if _, err := l.open(name); err != nil {
		return model.Repo{}, err
	}
	return model.Repo{Name: name, FullName: name}, nil
}

// ListBranches returns every local branch of the repository.
func (l *Local) ListBranches(_ context.Context, repo model.Repo) ([]model.Branch, error) {
	r, err := l.open(repo.Name)
	if err != nil {
		return nil, err
	}

	iter, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches for %s: %w", repo.Name, err)
	}

	var branches []model.Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, model.Branch{
			Name: ref.Name().Short(),
			SHA:  ref.Hash().String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches for %s: %w", repo.Name, err)
	}

	return branches, nil
}

// GetBranch resolves a single branch by name.
func (l *Local) GetBranch(_ context.Context, repo model.Repo, name string) (model.Branch, error) {
	r, err := l.open(repo.Name)
	if err != nil {
		return model.Branch{}, err
	}

	ref, err := r.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return model.Branch{}, fmt.Errorf("branch %s on %s: %w", name, repo.Name, model.ErrNotFound)
		}
		return model.Branch{}, fmt.Errorf("failed to resolve branch %s on %s: %w", name, repo.Name, err)
	}

	return model.Branch{Name: name, SHA: ref.Hash().String()}, nil
}

// Compare walks the history of both branches and counts the commits unique
// to each side.
func (l *Local) Compare(_ context.Context, repo model.Repo, base, head string) (model.Comparison, error) {
	r, err := l.open(repo.Name)
	if err != nil {
		return model.Comparison{}, err
	}

	baseRef, err := r.Reference(plumbing.NewBranchReferenceName(base), true)
	if err != nil {
		return model.Comparison{}, fmt.Errorf("failed to resolve %s on %s: %w", base, repo.Name, err)
	}
	headRef, err := r.Reference(plumbing.NewBranchReferenceName(head), true)
	if err != nil {
		return model.Comparison{}, fmt.Errorf("failed to resolve %s on %s: %w", head, repo.Name, err)
	}

	baseSet, err := reachable(r, baseRef.Hash())
	if err != nil {
		return model.Comparison{}, fmt.Errorf("failed to walk %s on %s: %w", base, repo.Name, err)
	}
	headSet, err := reachable(r, headRef.Hash())
	if err != nil {
		return model.Comparison{}, fmt.Errorf("failed to walk %s on %s: %w", head, repo.Name, err)
	}

	ahead, behind := 0, 0
	for h := range headSet {
		if !baseSet[h] {
			ahead++
		}
	}
	for h := range baseSet {
		if !headSet[h] {
			behind++
		}
	}

	return model.Comparison{
		Status:   model.StatusFor(ahead, behind),
		AheadBy:  ahead,
		BehindBy: behind,
	}, nil
}

// CommitAuthor returns the git author of a commit.
func (l *Local) CommitAuthor(_ context.Context, repo model.Repo, sha string) (model.CommitInfo, error) {
	r, err := l.open(repo.Name)
	if err != nil {
		return model.CommitInfo{}, err
	}

	commit, err := r.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return model.CommitInfo{}, fmt.Errorf("failed to read commit %s on %s: %w", sha, repo.Name, err)
	}

	return model.CommitInfo{
		Author: commit.Author.Name,
		When:   commit.Author.When,
	}, nil
}

// reachable builds the set of commits reachable from the given hash.
func reachable(repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, err
	}

	set := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}
