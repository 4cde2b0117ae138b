package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdsite/internal/config"
	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output          string `short:"o" help:"Override output.dir"`
	Incremental     bool   `short:"i" help:"Skip pages unchanged since the last build"`
	ContinueOnError bool   `name:"continue-on-error" help:"Skip pages that fail instead of aborting the build"`
	CheckLinks      bool   `name:"check-links" help:"Check internal links after building"`
	MetricsFile     string `name:"metrics-file" help:"Write build metrics in Prometheus text format to this file"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return RunBuild(ctx, g.Out, cfg, b.MetricsFile)
}

// apply layers the command line flags over the configuration and revalidates it.
func (b *BuildCmd) apply(cfg *config.Config) error {
	if b.Output != "" {
		cfg.Output.Dir = b.Output
	}
	if b.Incremental {
		cfg.Build.Incremental = true
	}
	if b.ContinueOnError {
		failFast := false
		cfg.Build.FailFast = &failFast
	}
	if b.CheckLinks {
		cfg.Build.CheckLinks = true
	}
	if b.MetricsFile != "" {
		cfg.Metrics.Enabled = true
	}
	return config.ValidateConfig(cfg)
}

// RunBuild builds the site once and prints a summary to out.
func RunBuild(ctx context.Context, out io.Writer, cfg *config.Config, metricsFile string) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close state store", logfields.Error(err))
		}
	}()

	if last, ok, err := store.LastBuild(ctx); err == nil && ok {
		slog.Info("Previous build",
			logfields.BuildID(last.ID),
			slog.String("outcome", last.Outcome),
			slog.Time("started_at", last.StartedAt))
	}

	recorder, reg := newRecorder(cfg)
	gen := site.New(cfg, site.WithStore(store), site.WithRecorder(recorder))

	report, buildErr := gen.Build(ctx)
	printReport(out, report)

	if metricsFile != "" && reg != nil {
		if err := prom.WriteToTextfile(metricsFile, reg); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(metricsFile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	if cfg.Build.CheckLinks {
		return RunCheck(ctx, out, cfg.Output.Dir)
	}
	return nil
}

func printReport(out io.Writer, r *site.Report) {
	if r == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "Build %s: %s in %s\n", r.BuildID, r.Outcome, r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(out, "  pages: %d rendered, %d unchanged, %d drafts, %d failed\n",
		r.Rendered, r.Unchanged, r.Drafts, len(r.Failed))
	_, _ = fmt.Fprintf(out, "  files: %d assets, %d static\n", r.Assets, r.StaticFiles)
	adapter := ferrors.NewCLIErrorAdapter(false, nil)
	for _, f := range r.Failed {
		_, _ = fmt.Fprintf(out, "  failed: %s: %s\n", f.Source, adapter.FormatError(f.Err))
	}
	_, _ = fmt.Fprintf(out, "  output: %s\n", r.OutputDir)
}
