package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docgraph/internal/config"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
	"git.home.luguber.info/inful/docgraph/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9102)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rec := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
	if w.MetricsAddr != "" {
		srv := &http.Server{Addr: w.MetricsAddr, Handler: metricsMux(rec), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("Serving metrics", slog.String("addr", w.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	r := &reloader{configPath: root.Config, cfg: cfg, rec: rec, stdout: g.stdout()}
	watcher, err := watch.New(watch.OptionsFromConfig(cfg, root.Config), r.reload)
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

func metricsMux(rec *metrics.PrometheusRecorder) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.HTTPHandler())
	return mux
}

// reloader re-reads the configuration and rebuilds. An invalid configuration
// keeps the last good one.
type reloader struct {
	mu         sync.Mutex
	configPath string
	cfg        *config.Config
	rec        *metrics.PrometheusRecorder
	stdout     io.Writer
}

func (r *reloader) reload(ctx context.Context, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reason != watch.ReasonInitial {
		cfg, err := config.Load(r.configPath)
		if err != nil {
			slog.Warn("Keeping previous configuration", logfields.Path(r.configPath), logfields.Error(err))
		} else {
			r.cfg = cfg
		}
	}

	res, err := runBuild(ctx, r.cfg, outputsFromConfig(r.cfg), r.rec, r.stdout)
	if err != nil {
		if ferrors.IsClassified(err) {
			return err
		}
		return ferrors.WrapError(err, ferrors.CategoryBuild, "reload failed").Build()
	}
	slog.Info("Graph updated", logfields.BuildID(res.BuildID), logfields.Count(len(res.Versions)))
	return nil
}
