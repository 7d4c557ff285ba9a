package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgraph/internal/config"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
)

type reloads struct {
	mu      sync.Mutex
	reasons []string
}

func (r *reloads) fn(_ context.Context, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
	return nil
}

func (r *reloads) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reasons...)
}

func startWatcher(t *testing.T, opts Options, r *reloads) *Watcher {
	t.Helper()
	w, err := New(opts, r.fn)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	require.Eventually(t, func() bool { return len(r.snapshot()) >= 1 }, 5*time.Second, 10*time.Millisecond)
	return w
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{Debounce: time.Second}, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	_, err = New(Options{}, (&reloads{}).fn)
	require.Error(t, err)
}

func TestWatcher_InitialReload(t *testing.T) {
	r := &reloads{}
	startWatcher(t, Options{Roots: []string{filepath.Join(t.TempDir(), "missing")}, Debounce: 20 * time.Millisecond}, r)
	assert.Equal(t, []string{ReasonInitial}, r.snapshot())
}

func TestWatcher_TriggersAreCoalesced(t *testing.T) {
	r := &reloads{}
	w := startWatcher(t, Options{Debounce: 100 * time.Millisecond}, r)

	for range 5 {
		w.Trigger("manual")
	}
	require.Eventually(t, func() bool { return len(r.snapshot()) == 2 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, []string{ReasonInitial, "manual"}, r.snapshot())
}

func TestWatcher_ReloadsOnDocChange(t *testing.T) {
	dir := t.TempDir()
	docsDir := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(docsDir, "guides"), 0o755))

	r := &reloads{}
	startWatcher(t, Options{Roots: []string{docsDir}, Debounce: 30 * time.Millisecond}, r)

	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "guides", "setup.md"), []byte("# Setup\n"), 0o644))
	require.Eventually(t, func() bool {
		got := r.snapshot()
		return len(got) >= 2 && got[len(got)-1] == ReasonChange
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_ScheduledRefresh(t *testing.T) {
	r := &reloads{}
	startWatcher(t, Options{Debounce: 10 * time.Millisecond, Refresh: 50 * time.Millisecond}, r)

	require.Eventually(t, func() bool {
		for _, reason := range r.snapshot() {
			if reason == ReasonRefresh {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	docsDir := filepath.Join(dir, "docs")
	sidebar := filepath.Join(dir, "sidebars.yaml")
	w := &Watcher{
		opts:  Options{Roots: []string{docsDir}},
		files: map[string]struct{}{sidebar: {}},
	}

	assert.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(docsDir, "a.md"), Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: sidebar, Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "README.md"), Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(docsDir, ".a.md.swp"), Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(docsDir, "a.md"), Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "docs-other", "a.md"), Op: fsnotify.Write}))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("site_dir: site\ndocs:\n  i18n_dir: i18n/fr\nwatch:\n  refresh: 1m\n"))
	require.NoError(t, err)

	opts := OptionsFromConfig(cfg, "docgraph.yaml")
	assert.Equal(t, []string{
		filepath.Join("site", "docs"),
		filepath.Join("site", "versioned_docs"),
		filepath.Join("site", "versioned_sidebars"),
		filepath.Join("site", "i18n/fr"),
	}, opts.Roots)
	assert.Contains(t, opts.Files, filepath.Join("site", "sidebars.yaml"))
	assert.Contains(t, opts.Files, "docgraph.yaml")
	assert.Equal(t, 500*time.Millisecond, opts.Debounce)
	assert.Equal(t, time.Minute, opts.Refresh)
}
