// Package loader turns a configured site into linked per-version document
// graphs.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docgraph/internal/config"
	"git.home.luguber.info/inful/docgraph/internal/docgraph"
	"git.home.luguber.info/inful/docgraph/internal/docmeta"
	"git.home.luguber.info/inful/docgraph/internal/docs"
	"git.home.luguber.info/inful/docgraph/internal/fingerprint"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/lastupdate"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
	"git.home.luguber.info/inful/docgraph/internal/numberprefix"
	"git.home.luguber.info/inful/docgraph/internal/sidebars"
	"git.home.luguber.info/inful/docgraph/internal/versions"
)

// LoadedVersion is the linked document graph of one version.
type LoadedVersion struct {
	Metadata  versions.Metadata
	MainDocID string
	// Docs are the published documents sorted by id.
	Docs []docs.DocMetadata
	// Drafts are excluded from linking, in discovery order.
	Drafts []docs.DocMetadataBase
	// Fingerprints maps document ids, drafts included, to content fingerprints.
	Fingerprints map[string]string
}

// Result is the outcome of loading every version of a site.
type Result struct {
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration
	Versions  []LoadedVersion
}

// Publisher is notified after each version loads.
type Publisher interface {
	PublishVersionLoaded(ctx context.Context, buildID string, v LoadedVersion) error
}

// Loader loads the versions described by a configuration.
type Loader struct {
	cfg        *config.Config
	recorder   metrics.Recorder
	lastUpdate docs.LastUpdateProvider
	publisher  Publisher
	now        func() time.Time
}

// Option customizes a Loader.
type Option func(*Loader)

// WithRecorder records load metrics on r.
func WithRecorder(r metrics.Recorder) Option {
	return func(l *Loader) {
		if r != nil {
			l.recorder = r
		}
	}
}

// WithLastUpdateProvider replaces the git-backed last-update lookup.
func WithLastUpdateProvider(p docs.LastUpdateProvider) Option {
	return func(l *Loader) { l.lastUpdate = p }
}

// WithPublisher publishes a notification for every loaded version.
func WithPublisher(p Publisher) Option {
	return func(l *Loader) { l.publisher = p }
}

// New returns a Loader for cfg, which must already be defaulted.
func New(cfg *config.Config, opts ...Option) *Loader {
	l := &Loader{cfg: cfg, recorder: metrics.NoopRecorder{}, now: time.Now}
	d := cfg.Docs
	luOpts := lastupdate.Options{
		ShowAuthor:       d.ShowLastUpdateAuthor,
		ShowTime:         d.ShowLastUpdateTime,
		UseRealVCSLookup: config.BoolValue(d.UseRealVCSLookup, true),
	}
	if luOpts.Enabled() {
		l.lastUpdate = lastupdate.NewGitProvider(luOpts)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Versions derives the metadata of every configured version.
func (l *Loader) Versions() ([]versions.Metadata, error) {
	d := l.cfg.Docs
	return versions.Load(versions.Options{
		SiteDir:               l.cfg.SiteDir,
		DocsPath:              d.Path,
		SidebarPath:           d.SidebarPath,
		BaseURL:               l.cfg.BaseURL,
		RouteBasePath:         d.RouteBasePath,
		TagsBasePath:          d.TagsBasePath,
		EditURL:               d.EditURL,
		EditCurrentVersion:    d.EditCurrentVersion,
		I18nDir:               d.I18nDir,
		IncludeCurrentVersion: config.BoolValue(d.IncludeCurrentVersion, true),
		LastVersion:           d.LastVersion,
		OnlyIncludeVersions:   d.OnlyIncludeVersions,
	})
}

// Load loads every version in order. Versions are independent; the first
// failing version aborts the load.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	res := &Result{BuildID: uuid.NewString(), StartedAt: l.now()}
	all, err := l.Versions()
	if err != nil {
		return nil, err
	}
	slog.Info("Loading documentation", logfields.BuildID(res.BuildID), logfields.Count(len(all)))

	for _, v := range all {
		loaded, err := l.LoadVersion(ctx, v)
		if err != nil {
			return nil, err
		}
		if l.publisher != nil {
			start := time.Now()
			if err := l.publisher.PublishVersionLoaded(ctx, res.BuildID, loaded); err != nil {
				slog.Warn("Failed to publish version event",
					logfields.BuildID(res.BuildID), logfields.Version(v.VersionName), logfields.Error(err))
			}
			l.recorder.ObserveStageDuration(v.VersionName, metrics.StagePublish, time.Since(start))
		}
		res.Versions = append(res.Versions, loaded)
	}
	res.Duration = l.now().Sub(res.StartedAt)
	slog.Info("Documentation loaded",
		logfields.BuildID(res.BuildID),
		logfields.Count(len(res.Versions)),
		logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res, nil
}

// LoadVersion reads, builds and links the documents of one version.
func (l *Loader) LoadVersion(ctx context.Context, v versions.Metadata) (lv LoadedVersion, err error) {
	start := time.Now()
	defer func() {
		l.recorder.ObserveVersionDuration(v.VersionName, time.Since(start))
		l.recorder.IncVersionResult(v.VersionName, metrics.ResultFor(err, errors.Is(err, context.Canceled)))
	}()

	files, err := l.read(ctx, v)
	if err != nil {
		return LoadedVersion{}, err
	}
	if len(files) == 0 {
		return LoadedVersion{}, ferrors.ValidationError(fmt.Sprintf(
			"docs version %q has no docs! At least one doc should exist at %q", v.VersionName, l.relative(v.ContentPath))).
			WithContext(ferrors.KeyVersion, v.VersionName).
			Build()
	}

	built, prints, err := l.build(ctx, v, files)
	if err != nil {
		return LoadedVersion{}, err
	}

	published, drafts := partitionDrafts(built)
	l.recorder.SetVersionDocs(v.VersionName, len(published), len(drafts))

	stage := time.Now()
	s, err := sidebars.Load(v.SidebarFilePath)
	if err != nil {
		return LoadedVersion{}, err
	}
	hidden := docgraph.AllIDs(drafts)
	utils := sidebars.NewUtils(s, v.Path, hidden...)
	linked, err := docgraph.AddNavigation(published, utils, docgraph.LinkOptions{
		SidebarFilePath: v.SidebarFilePath,
		Locale:          l.cfg.Locale,
		HiddenIDs:       hidden,
	})
	if err != nil {
		return LoadedVersion{}, err
	}
	l.recorder.ObserveStageDuration(v.VersionName, metrics.StageLink, time.Since(stage))

	stage = time.Now()
	mainDocID, err := docgraph.MainDocID(published, utils)
	switch {
	case errors.Is(err, docgraph.ErrNoDocuments):
		slog.Warn("Every doc of the version is a draft; no main doc selected", logfields.Version(v.VersionName))
	case err != nil:
		return LoadedVersion{}, err
	}
	l.recorder.ObserveStageDuration(v.VersionName, metrics.StageMainDoc, time.Since(stage))

	slog.Info("Version loaded",
		logfields.Version(v.VersionName),
		logfields.Count(len(linked)),
		slog.Int("drafts", len(drafts)),
		slog.String("main_doc", mainDocID),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	return LoadedVersion{
		Metadata:     v,
		MainDocID:    mainDocID,
		Docs:         linked,
		Drafts:       drafts,
		Fingerprints: prints,
	}, nil
}

func (l *Loader) read(ctx context.Context, v versions.Metadata) ([]docs.DocFile, error) {
	start := time.Now()
	defer func() { l.recorder.ObserveStageDuration(v.VersionName, metrics.StageRead, time.Since(start)) }()
	return docs.ReadVersionDocs(ctx, docs.ReadOptions{
		ContentPath:          v.ContentPath,
		ContentPathLocalized: v.ContentPathLocalized,
		Include:              l.cfg.Docs.Include,
		Exclude:              l.cfg.Docs.Exclude,
		Concurrency:          l.cfg.Concurrency,
		LastUpdate:           l.lastUpdate,
	})
}

// build constructs every document concurrently. Results keep the order of
// files; the first failure cancels the remaining work.
func (l *Loader) build(ctx context.Context, v versions.Metadata, files []docs.DocFile) ([]docs.DocMetadataBase, map[string]string, error) {
	start := time.Now()
	defer func() { l.recorder.ObserveStageDuration(v.VersionName, metrics.StageBuild, time.Since(start)) }()

	builder := docmeta.NewBuilder(
		docmeta.LoadContext{SiteDir: l.cfg.SiteDir, Locale: l.cfg.Locale},
		l.builderOptions(),
	)

	built := make([]docs.DocMetadataBase, len(files))
	prints := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if l.cfg.Concurrency > 0 {
		g.SetLimit(l.cfg.Concurrency)
	}
	for i, f := range files {
		g.Go(func() error {
			meta, err := builder.Build(gctx, f, v)
			if err != nil {
				l.recorder.IncDocFailure(v.VersionName)
				return err
			}
			fp, err := fingerprint.Compute(f.Content)
			if err != nil {
				slog.Warn("Failed to fingerprint doc", logfields.File(f.FilePath), logfields.Error(err))
			}
			built[i], prints[i] = meta, fp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byID := make(map[string]string, len(built))
	for i, d := range built {
		if prints[i] != "" {
			byID[d.ID] = prints[i]
		}
	}
	return built, byID, nil
}

func (l *Loader) builderOptions() docmeta.Options {
	d := l.cfg.Docs
	opts := docmeta.Options{
		EditLocalizedFiles:   d.EditLocalizedFiles,
		ShowLastUpdateAuthor: d.ShowLastUpdateAuthor,
		ShowLastUpdateTime:   d.ShowLastUpdateTime,
		IncludeDrafts:        d.IncludeDrafts,
		NumberPrefix:         numberprefix.Default,
	}
	if !config.BoolValue(d.NumberPrefixes, true) {
		opts.NumberPrefix = numberprefix.Disabled
	}
	switch {
	case d.EditURLPattern != "":
		opts.EditURL = docmeta.PatternEditURL(d.EditURLPattern)
	case d.EditURL != "":
		opts.EditURL = docmeta.TemplateEditURL()
	default:
		opts.EditURL = docmeta.NoEditURL()
	}
	return opts
}

func (l *Loader) relative(p string) string {
	base, err1 := filepath.Abs(l.cfg.SiteDir)
	target, err2 := filepath.Abs(p)
	if err1 != nil || err2 != nil {
		return p
	}
	if rel, err := filepath.Rel(base, target); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}

// partitionDrafts splits built docs into published docs and drafts,
// preserving order within each group.
func partitionDrafts(all []docs.DocMetadataBase) (published, drafts []docs.DocMetadataBase) {
	for _, d := range all {
		if d.Draft {
			drafts = append(drafts, d)
			continue
		}
		published = append(published, d)
	}
	return published, drafts
}
