// Package commands implements the docgraph CLI commands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docgraph/internal/config"
	"git.home.luguber.info/inful/docgraph/internal/events"
	"git.home.luguber.info/inful/docgraph/internal/loader"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/manifest"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
	"git.home.luguber.info/inful/docgraph/internal/store"
)

// Global carries state shared by every command.
type Global struct {
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"docgraph.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogLevel  string           `name:"log-level" help:"Log level (debug|info|warn|error)" env:"DOCGRAPH_LOG_LEVEL"`
	LogFormat string           `name:"log-format" help:"Log format (text|json)" env:"DOCGRAPH_LOG_FORMAT"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Load every version and write the manifest and optional outputs"`
	IDs   IDsCmd   `cmd:"" name:"ids" help:"List document ids, permalinks and main docs"`
	Watch WatchCmd `cmd:"" help:"Reload whenever docs, sidebars or configuration change"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level, err := c.level(config.LogLevelInfo)
	if err != nil {
		return err
	}
	setupLogging(level, config.NormalizeLogFormat(c.LogFormat))
	return nil
}

func (c *CLI) level(def config.LogLevel) (config.LogLevel, error) {
	switch {
	case c.Verbose:
		return config.LogLevelDebug, nil
	case c.LogLevel != "":
		return config.ParseLogLevel(c.LogLevel)
	default:
		return def, nil
	}
}

// loadConfig loads the configuration file. Logging settings from the file
// apply unless flags or the environment chose them.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	level, err := c.level(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format := cfg.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	setupLogging(level, format)
	return cfg, nil
}

func setupLogging(level config.LogLevel, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level.Slog()}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// outputs selects what runBuild writes besides the load itself.
type outputs struct {
	manifest    string
	database    string
	metricsFile string
	events      bool
}

func outputsFromConfig(cfg *config.Config) outputs {
	return outputs{
		manifest:    cfg.Output.Manifest,
		database:    cfg.Output.Database,
		metricsFile: cfg.Output.MetricsFile,
		events:      cfg.Events.Enabled(),
	}
}

// runBuild loads every version and writes the selected outputs.
func runBuild(ctx context.Context, cfg *config.Config, out outputs, rec *metrics.PrometheusRecorder, stdout io.Writer) (*loader.Result, error) {
	opts := []loader.Option{loader.WithRecorder(rec)}
	if out.events {
		pub, err := events.Connect(ctx, cfg.Events)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := pub.Close(); err != nil {
				slog.Warn("Failed to close NATS connection", logfields.Error(err))
			}
		}()
		opts = append(opts, loader.WithPublisher(pub))
	}

	res, err := loader.New(cfg, opts...).Load(ctx)
	if err != nil {
		return nil, err
	}

	m := manifest.FromResult(res)
	if err := writeManifest(m, out.manifest, stdout); err != nil {
		return nil, err
	}
	if out.database != "" {
		if err := saveResult(ctx, out.database, res); err != nil {
			return nil, err
		}
	}
	if out.metricsFile != "" {
		if err := rec.WriteTextfile(out.metricsFile); err != nil {
			return nil, err
		}
		slog.Debug("Wrote metrics textfile", logfields.Path(out.metricsFile))
	}
	return res, nil
}

func writeManifest(m *manifest.Manifest, path string, stdout io.Writer) error {
	switch path {
	case "":
		return nil
	case "-":
		data, err := m.ToJSON()
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	default:
		if err := m.WriteFile(path); err != nil {
			return err
		}
		slog.Info("Wrote manifest", logfields.Path(path), logfields.BuildID(m.BuildID))
		return nil
	}
}

func saveResult(ctx context.Context, path string, res *loader.Result) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close store", logfields.Error(err))
		}
	}()
	if err := db.SaveResult(ctx, res); err != nil {
		return err
	}
	slog.Info("Saved graph", logfields.Path(path), logfields.BuildID(res.BuildID))
	return nil
}
