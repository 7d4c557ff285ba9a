// Package watch reloads the document graph when site sources change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docgraph/internal/config"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/versions"
)

// Reasons passed to a ReloadFunc.
const (
	ReasonInitial = "initial"
	ReasonChange  = "change"
	ReasonRefresh = "refresh"
)

// ReloadFunc rebuilds the graph. Errors are logged and do not stop watching.
type ReloadFunc func(ctx context.Context, reason string) error

// Options configures a Watcher.
type Options struct {
	// Roots are directories watched recursively. Missing roots are skipped.
	Roots []string
	// Files are watched through their parent directory.
	Files    []string
	Debounce time.Duration
	// Refresh schedules periodic reloads when positive.
	Refresh time.Duration
}

// OptionsFromConfig watches the docs trees, the sidebar and version files
// and the configuration file itself.
func OptionsFromConfig(cfg *config.Config, configPath string) Options {
	site := cfg.SiteDir
	opts := Options{
		Roots: []string{
			filepath.Join(site, cfg.Docs.Path),
			filepath.Join(site, versions.VersionedDocsDir),
			filepath.Join(site, versions.VersionedSidebarsDir),
		},
		Files: []string{
			filepath.Join(site, cfg.Docs.SidebarPath),
			filepath.Join(site, versions.VersionsFile),
		},
		Debounce: cfg.Watch.DebounceDuration(),
		Refresh:  cfg.Watch.RefreshInterval(),
	}
	if cfg.Docs.I18nDir != "" {
		opts.Roots = append(opts.Roots, filepath.Join(site, cfg.Docs.I18nDir))
	}
	if configPath != "" {
		opts.Files = append(opts.Files, configPath)
	}
	return opts
}

// Watcher coalesces file system events and scheduled refreshes into
// serialized reloads.
type Watcher struct {
	opts   Options
	reload ReloadFunc
	fsw    *fsnotify.Watcher
	sched  gocron.Scheduler

	files    map[string]struct{}
	requests chan string
	closeMu  sync.Once
}

// New creates a Watcher. Call Run to start it.
func New(opts Options, reload ReloadFunc) (*Watcher, error) {
	if reload == nil {
		return nil, ferrors.ValidationError("reload function is required").Build()
	}
	if opts.Debounce <= 0 {
		return nil, ferrors.ValidationError("debounce must be > 0").Build()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	w := &Watcher{
		opts:     opts,
		reload:   reload,
		fsw:      fsw,
		files:    map[string]struct{}{},
		requests: make(chan string, 1),
	}
	if opts.Refresh > 0 {
		sched, err := gocron.NewScheduler()
		if err != nil {
			_ = fsw.Close()
			return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to create scheduler").Build()
		}
		if _, err := sched.NewJob(
			gocron.DurationJob(opts.Refresh),
			gocron.NewTask(w.Trigger, ReasonRefresh),
			gocron.WithName("docgraph-refresh"),
		); err != nil {
			_ = fsw.Close()
			_ = sched.Shutdown()
			return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to schedule refresh").Build()
		}
		w.sched = sched
	}
	return w, nil
}

// Trigger requests a reload. Requests made while one is pending are merged.
func (w *Watcher) Trigger(reason string) {
	select {
	case w.requests <- reason:
	default:
	}
}

// Run performs an initial reload, then reloads on changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	if err := w.addAll(); err != nil {
		return err
	}
	if w.sched != nil {
		w.sched.Start()
		slog.Info("Scheduled periodic refresh", slog.Duration("interval", w.opts.Refresh))
	}
	w.run(ctx, ReasonInitial)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	var (
		pending string
		timerC  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("Source change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if ev.Has(fsnotify.Create) {
				w.addCreatedDir(ev.Name)
			}
			pending = ReasonChange
			timer.Reset(w.opts.Debounce)
			timerC = timer.C
		case reason := <-w.requests:
			pending = reason
			timer.Reset(w.opts.Debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.run(ctx, pending)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) run(ctx context.Context, reason string) {
	start := time.Now()
	slog.Info("Reloading", slog.String("reason", reason))
	if err := w.reload(ctx, reason); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Error("Reload failed", slog.String("reason", reason), logfields.Error(err))
		return
	}
	slog.Info("Reload complete", slog.String("reason", reason),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

func (w *Watcher) addAll() error {
	for _, root := range w.opts.Roots {
		if err := w.addTree(root); err != nil {
			return err
		}
	}
	for _, f := range w.opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve watched file").
				WithContext(ferrors.KeyFile, f).Build()
		}
		w.files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if err := w.fsw.Add(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", dir).Build()
		}
	}
	slog.Info("Watching sources", logfields.Count(len(w.fsw.WatchList())))
	return nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch directory tree").
			WithContext("path", root).Build()
	}
	return nil
}

func (w *Watcher) addCreatedDir(p string) {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(p); err != nil {
		slog.Warn("Failed to watch new directory", logfields.Path(p), logfields.Error(err))
	}
}

// relevant reports whether ev may change the graph: any change below a
// root except editor artifacts, or a change to a watched file.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if _, ok := w.files[abs]; ok {
		return true
	}
	for _, root := range w.opts.Roots {
		r, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if abs == r || strings.HasPrefix(abs, r+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) close() {
	w.closeMu.Do(func() {
		if w.sched != nil {
			if err := w.sched.Shutdown(); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}
		if err := w.fsw.Close(); err != nil {
			slog.Warn("Failed to close file watcher", logfields.Error(err))
		}
	})
}
