package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	derrors "git.home.luguber.info/inful/docgraph/internal/docs/errors"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// DefaultInclude matches Markdown and MDX sources.
var DefaultInclude = []string{"**/*.{md,mdx}"}

// DefaultExclude skips partials, underscore directories and test folders.
var DefaultExclude = []string{
	"**/_*.{js,jsx,ts,tsx,md,mdx}",
	"**/_*/**",
	"**/*.test.{js,jsx,ts,tsx}",
	"**/__tests__/**",
}

// Discover returns the slash-separated paths under root matching any include
// pattern and no exclude pattern, sorted. Directories are never returned.
func Discover(root string, include, exclude []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrContentPathNotFound, root)
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", derrors.ErrInvalidPattern, p)
		}
	}

	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", derrors.ErrDocsDirWalkFailed, root, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			if excluded(m, exclude) {
				slog.Debug("Excluded source", logfields.File(m))
				continue
			}
			st, err := fs.Stat(fsys, m)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", derrors.ErrDocsDirWalkFailed, m, err)
			}
			if !st.Mode().IsRegular() {
				continue
			}
			out = append(out, m)
		}
	}
	sort.Strings(out)

	slog.Debug("Discovered sources", logfields.Path(root), logfields.Count(len(out)))
	return out, nil
}

func excluded(p string, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
