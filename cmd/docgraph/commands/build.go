package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docgraph/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Manifest    string `short:"m" help:"Manifest path, '-' for stdout (overrides output.manifest)"`
	Database    string `help:"SQLite database to save the graph to (overrides output.database)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile (overrides output.metrics_file)"`
	NoEvents    bool   `name:"no-events" help:"Do not publish load events even when events.nats_url is set"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	out := outputsFromConfig(cfg)
	if b.Manifest != "" {
		out.manifest = b.Manifest
	}
	if b.Database != "" {
		out.database = b.Database
	}
	if b.MetricsFile != "" {
		out.metricsFile = b.MetricsFile
	}
	if b.NoEvents {
		out.events = false
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rec := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
	_, err = runBuild(ctx, cfg, out, rec, g.stdout())
	return err
}
