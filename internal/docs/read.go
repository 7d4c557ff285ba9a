package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	derrors "git.home.luguber.info/inful/docgraph/internal/docs/errors"
)

// LastUpdateProvider looks up the version-control attribution of a file.
type LastUpdateProvider interface {
	LastUpdate(ctx context.Context, filePath string) (LastUpdateData, error)
}

// ReadOptions configures reading all sources of one version.
type ReadOptions struct {
	ContentPath string
	// ContentPathLocalized, when set, is searched before ContentPath.
	ContentPathLocalized string
	Include              []string
	Exclude              []string
	// Concurrency bounds parallel reads; zero or less means unbounded.
	Concurrency int
	// LastUpdate is optional; nil leaves LastUpdateData empty.
	LastUpdate LastUpdateProvider
}

// ContentPaths returns the roots to search for a source, localized first.
func (o ReadOptions) ContentPaths() []string {
	if o.ContentPathLocalized == "" {
		return []string{o.ContentPath}
	}
	return []string{o.ContentPathLocalized, o.ContentPath}
}

// ReadVersionDocs discovers the sources of a version and reads them
// concurrently. The result keeps discovery order; the first failure cancels
// the remaining reads.
func ReadVersionDocs(ctx context.Context, opts ReadOptions) ([]DocFile, error) {
	sources, err := Discover(opts.ContentPath, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	files := make([]DocFile, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, source := range sources {
		g.Go(func() error {
			f, err := ReadDocFile(gctx, opts.ContentPaths(), source, opts.LastUpdate)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// ReadDocFile reads source from the first content path that contains it and
// pairs it with its last-update data.
func ReadDocFile(ctx context.Context, contentPaths []string, source string, lu LastUpdateProvider) (DocFile, error) {
	if err := ctx.Err(); err != nil {
		return DocFile{}, err
	}

	contentPath, filePath, err := locate(contentPaths, source)
	if err != nil {
		return DocFile{}, err
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return DocFile{}, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, filePath, err)
	}

	var last LastUpdateData
	if lu != nil {
		last, err = lu.LastUpdate(ctx, filePath)
		if err != nil {
			return DocFile{}, fmt.Errorf("%w: %s: %w", derrors.ErrLastUpdateFailed, filePath, err)
		}
	}

	return DocFile{
		Source:      source,
		Content:     string(raw),
		LastUpdate:  last,
		ContentPath: contentPath,
		FilePath:    filePath,
	}, nil
}

func locate(contentPaths []string, source string) (string, string, error) {
	for _, root := range contentPaths {
		candidate := filepath.Join(root, filepath.FromSlash(source))
		if st, err := os.Stat(candidate); err == nil && st.Mode().IsRegular() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", "", fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, candidate, err)
			}
			return root, abs, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s in %v", derrors.ErrSourceNotFound, source, contentPaths)
}
