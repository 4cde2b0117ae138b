package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/preview"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// PreviewCmd serves the output directory and rebuilds on changes to content, static
// files or the template.
type PreviewCmd struct {
	Addr     string `short:"a" help:"Listen address (overrides preview.addr)"`
	Debounce string `help:"Quiet period before rebuilding, e.g. 300ms (overrides preview.debounce)"`
	Metrics  bool   `help:"Expose Prometheus metrics on metrics.path"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if err := p.apply(cfg); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close state store", logfields.Error(err))
		}
	}()

	recorder, reg := newRecorder(cfg)
	gen := site.New(cfg, site.WithStore(store), site.WithRecorder(recorder))
	return preview.New(cfg, gen, reg).Run(ctx)
}

func (p *PreviewCmd) apply(cfg *config.Config) error {
	if p.Addr != "" {
		cfg.Preview.Addr = p.Addr
	}
	if p.Debounce != "" {
		cfg.Preview.Debounce = p.Debounce
	}
	if p.Metrics {
		cfg.Metrics.Enabled = true
	}
	return config.ValidateConfig(cfg)
}
