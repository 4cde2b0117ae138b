// Package commands implements the mdsite command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/state"
)

// Global carries the process streams shared by all commands.
type Global struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// NewGlobal binds the commands to the process streams.
func NewGlobal() *Global {
	return &Global{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"mdsite.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site described by the configuration"`
	Render  RenderCmd  `cmd:"" help:"Render a single Markdown file to standard output"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Preview PreviewCmd `cmd:"" help:"Serve the site and rebuild it when sources change"`
	Check   CheckCmd   `cmd:"" help:"Check internal links of a built site"`
}

// AfterApply runs after flag parsing; setup logging once. Commands that load a
// configuration reconfigure it from the logging section.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	configureLogging(os.Stderr, c.Verbose, config.LoggingConfig{})
	return nil
}

func configureLogging(w io.Writer, verbose bool, lc config.LoggingConfig) {
	level := config.NormalizeLogLevel(string(lc.Level)).SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if config.NormalizeLogFormat(string(lc.Format)) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the configuration named on the command line and applies its
// logging section.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(g.ErrOut, root.Verbose, cfg.Logging)
	return cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// openStore returns the persistent store for incremental builds and an in-memory one
// otherwise.
func openStore(cfg *config.Config) (state.Store, error) {
	if !cfg.Build.Incremental {
		return state.NewMemoryStore(), nil
	}
	return state.NewSQLiteStore(cfg.Build.StatePath)
}

// newRecorder returns a Prometheus recorder and its registry when metrics are enabled.
func newRecorder(cfg *config.Config) (metrics.Recorder, *prom.Registry) {
	if !cfg.Metrics.Enabled {
		return metrics.NoopRecorder{}, nil
	}
	reg := prom.NewRegistry()
	return metrics.NewPrometheusRecorder(reg), reg
}
