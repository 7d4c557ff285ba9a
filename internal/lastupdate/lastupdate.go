// Package lastupdate attributes documentation files to their last commit.
package lastupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/docgraph/internal/docs"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// Placeholder attribution used when real history lookup is disabled.
const (
	PlaceholderAuthor          = "Author"
	PlaceholderTimestamp int64 = 1539502055
)

// Options selects which attribution fields are wanted and where they come from.
type Options struct {
	ShowAuthor bool
	ShowTime   bool
	// UseRealVCSLookup reads git history; otherwise the placeholder is returned.
	UseRealVCSLookup bool
}

// Enabled reports whether any attribution field is requested.
func (o Options) Enabled() bool { return o.ShowAuthor || o.ShowTime }

// GitProvider looks up the last commit touching a file with go-git.
// Repositories are opened once per working tree and lookups are serialized.
type GitProvider struct {
	opts Options

	mu    sync.Mutex
	repos map[string]*repoHandle
}

type repoHandle struct {
	repo *git.Repository
	root string
}

// NewGitProvider returns a provider honoring opts.
func NewGitProvider(opts Options) *GitProvider {
	return &GitProvider{opts: opts, repos: make(map[string]*repoHandle)}
}

// Placeholder returns the fixed attribution.
func Placeholder() docs.LastUpdateData {
	author := PlaceholderAuthor
	ts := PlaceholderTimestamp
	return docs.LastUpdateData{LastUpdatedBy: &author, LastUpdatedAt: &ts}
}

// LastUpdate implements docs.LastUpdateProvider. A file outside a git working
// tree, or without history, yields empty data and a warning.
func (p *GitProvider) LastUpdate(ctx context.Context, filePath string) (docs.LastUpdateData, error) {
	if !p.opts.Enabled() {
		return docs.LastUpdateData{}, nil
	}
	if !p.opts.UseRealVCSLookup {
		return Placeholder(), nil
	}
	if err := ctx.Err(); err != nil {
		return docs.LastUpdateData{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.open(filepath.Dir(filePath))
	if errors.Is(err, git.ErrRepositoryNotExists) {
		slog.Warn("Last update requested but file is not in a git repository", logfields.File(filePath))
		return docs.LastUpdateData{}, nil
	}
	if err != nil {
		return docs.LastUpdateData{}, ferrors.WrapError(err, ferrors.CategoryGit, "open repository").
			WithContext(ferrors.KeyFile, filePath).Build()
	}

	resolved, err := filepath.EvalSymlinks(filePath)
	if err != nil {
		resolved = filePath
	}
	rel, err := filepath.Rel(h.root, resolved)
	if err != nil {
		return docs.LastUpdateData{}, ferrors.WrapError(err, ferrors.CategoryGit, "relative path in repository").
			WithContext(ferrors.KeyFile, filePath).Build()
	}
	rel = filepath.ToSlash(rel)

	iter, err := h.repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		slog.Warn("No git history for file", logfields.File(filePath))
		return docs.LastUpdateData{}, nil
	}
	if err != nil {
		return docs.LastUpdateData{}, ferrors.WrapError(err, ferrors.CategoryGit, "read history").
			WithContext(ferrors.KeyFile, filePath).Build()
	}
	defer iter.Close()

	commit, err := iter.Next()
	if errors.Is(err, io.EOF) {
		slog.Warn("No git history for file", logfields.File(filePath))
		return docs.LastUpdateData{}, nil
	}
	if err != nil {
		return docs.LastUpdateData{}, ferrors.WrapError(err, ferrors.CategoryGit, "read history").
			WithContext(ferrors.KeyFile, filePath).Build()
	}

	author := commit.Author.Name
	ts := commit.Committer.When.Unix()
	return docs.LastUpdateData{LastUpdatedBy: &author, LastUpdatedAt: &ts}, nil
}

func (p *GitProvider) open(dir string) (*repoHandle, error) {
	if h, ok := p.repos[dir]; ok {
		return h, nil
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	root := wt.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	h := &repoHandle{repo: repo, root: root}
	p.repos[dir] = h
	return h, nil
}
