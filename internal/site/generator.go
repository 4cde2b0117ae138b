package site

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mdsite/internal/config"
	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/page"
	"git.home.luguber.info/inful/mdsite/internal/state"
	"git.home.luguber.info/inful/mdsite/internal/workspace"
)

// Build stages, used as metric labels.
const (
	StageDiscover = "discover"
	StageStatic   = "static"
	StageAssets   = "assets"
	StagePages    = "pages"
	StagePromote  = "promote"
)

// Generator builds the site described by a configuration.
type Generator struct {
	cfg      *config.Config
	store    state.Store
	recorder metrics.Recorder
}

// Option configures a Generator.
type Option func(*Generator)

// WithStore sets the state store used for incremental builds.
func WithStore(s state.Store) Option {
	return func(g *Generator) { g.store = s }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// New returns a generator for cfg. Without options it keeps state in memory and
// records no metrics.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		store:    state.NewMemoryStore(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build runs one complete build. The returned report is non-nil even when err is not.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	report := &Report{
		BuildID:   uuid.NewString(),
		StartedAt: time.Now(),
		OutputDir: g.cfg.Output.Dir,
	}
	log := slog.With(logfields.BuildID(report.BuildID))
	log.Info("Build started",
		logfields.Path(g.cfg.Content.Dir),
		logfields.Output(g.cfg.Output.Dir))

	err := g.build(ctx, report, log)

	report.Duration = time.Since(report.StartedAt)
	report.Outcome = outcomeFor(err, report)
	g.recorder.ObserveBuildDuration(report.Duration)
	g.recorder.IncBuildOutcome(report.Outcome)
	g.recordBuild(context.WithoutCancel(ctx), report, log)

	if err != nil {
		log.Error("Build failed",
			slog.String("outcome", string(report.Outcome)),
			logfields.Since(report.StartedAt),
			logfields.Error(err))
		return report, err
	}

	log.Info("Build finished",
		slog.String("outcome", string(report.Outcome)),
		slog.Int("rendered", report.Rendered),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("drafts", report.Drafts),
		slog.Int("failed", len(report.Failed)),
		slog.Int("assets", report.Assets+report.StaticFiles),
		logfields.Since(report.StartedAt))
	return report, nil
}

func (g *Generator) build(ctx context.Context, report *Report, log *slog.Logger) error {
	tmpl, err := page.LoadTemplate(g.cfg.Template.Path)
	if err != nil {
		return err
	}
	renderer := page.NewRenderer(tmpl, markdown.NormalizeEngine(g.cfg.Markdown.Engine))

	var sources []Source
	if err := g.stage(ctx, StageDiscover, func() error {
		sources, err = Discover(g.cfg.Content.Dir, g.cfg.Content.Exclude)
		return err
	}); err != nil {
		return err
	}

	ws := g.workspace()
	if err := ws.Create(); err != nil {
		return ferrors.FileSystemError("failed to prepare output directory").WithCause(err).
			WithContext("dir", g.cfg.Output.Dir).
			Build()
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			log.Warn("Failed to clean up workspace", logfields.Error(err))
		}
	}()
	out := ws.GetPath()

	if err := g.stage(ctx, StageStatic, func() error {
		report.StaticFiles, err = CopyStatic(g.cfg.Static.Dir, out)
		g.recorder.AddStaticFiles(report.StaticFiles)
		return err
	}); err != nil {
		return err
	}

	pages, assets := partition(sources)

	if err := g.stage(ctx, StageAssets, func() error {
		for _, src := range assets {
			if err := copyFile(src.Path, filepath.Join(out, filepath.FromSlash(src.Output))); err != nil {
				return ferrors.FileSystemError("failed to copy content asset").WithCause(err).
					WithContext("file", src.Rel).
					Build()
			}
			report.Assets++
		}
		g.recorder.AddStaticFiles(report.Assets)
		return nil
	}); err != nil {
		return err
	}

	if err := g.stage(ctx, StagePages, func() error {
		return g.renderPages(ctx, renderer, pages, out, report, log)
	}); err != nil {
		return err
	}

	return g.stage(ctx, StagePromote, func() error {
		if err := ws.Promote(); err != nil {
			return ferrors.FileSystemError("failed to publish output directory").WithCause(err).
				WithContext("dir", g.cfg.Output.Dir).
				Build()
		}
		return nil
	})
}

// stage times fn and records its result under name.
func (g *Generator) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	g.recorder.ObserveStageDuration(name, time.Since(start))
	switch {
	case err == nil:
		g.recorder.IncStageResult(name, metrics.ResultSuccess)
	case ctx.Err() != nil:
		g.recorder.IncStageResult(name, metrics.ResultCanceled)
	default:
		g.recorder.IncStageResult(name, metrics.ResultFatal)
	}
	return err
}

func (g *Generator) workspace() *workspace.Manager {
	if g.cfg.Output.Clean {
		return workspace.NewManager(g.cfg.Output.Dir)
	}
	return workspace.NewInPlaceManager(g.cfg.Output.Dir)
}

type pageOutcome struct {
	src    Source
	result metrics.PageResult // empty when the page was not attempted
	err    error
}

// renderPages fans pages out to a bounded pool of workers. With fail_fast the first
// failure cancels the remaining work; otherwise failures are collected in the report.
func (g *Generator) renderPages(parent context.Context, r *page.Renderer, pages []Source, out string, report *Report, log *slog.Logger) error {
	if len(pages) == 0 {
		return nil
	}
	workers := max(1, min(g.cfg.Build.Workers, len(pages)))
	g.recorder.SetWorkers(workers)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan Source)
	results := make(chan pageOutcome)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				results <- g.renderPage(ctx, r, src, out, report.BuildID)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, src := range pages {
			select {
			case jobs <- src:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	failFast := g.cfg.Build.FailFastEnabled()
	var firstErr error
	for res := range results {
		if res.result == "" {
			continue
		}
		g.recorder.IncPageResult(res.result)
		switch res.result {
		case metrics.PageRendered:
			report.Rendered++
		case metrics.PageUnchanged:
			report.Unchanged++
		case metrics.PageDraft:
			report.Drafts++
		case metrics.PageFailed:
			report.Failed = append(report.Failed, PageError{Source: res.src.Rel, Err: res.err})
			log.Error("Page failed", logfields.Page(res.src.Rel), logfields.Error(res.err))
			if failFast && firstErr == nil {
				firstErr = res.err
				cancel()
			}
		}
	}

	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Source < report.Failed[j].Source })

	if firstErr != nil {
		return firstErr
	}
	if err := parent.Err(); err != nil {
		return ferrors.RuntimeError("build canceled").WithCause(err).Build()
	}
	return nil
}

func (g *Generator) renderPage(ctx context.Context, r *page.Renderer, src Source, out, buildID string) pageOutcome {
	if ctx.Err() != nil {
		return pageOutcome{src: src}
	}
	start := time.Now()
	defer func() { g.recorder.ObservePageDuration(time.Since(start)) }()

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return failedPage(src, ferrors.FileSystemError("failed to read page source").WithCause(err).Build())
	}

	dst := filepath.Join(out, filepath.FromSlash(src.Output))
	fingerprint := r.Fingerprint(data)

	if g.cfg.Build.Incremental && g.reuse(ctx, src, fingerprint, dst) {
		slog.Debug("Page unchanged", logfields.Page(src.Rel))
		return pageOutcome{src: src, result: metrics.PageUnchanged}
	}

	p, err := r.Render(data)
	if err != nil {
		if ferr := g.store.ForgetPage(ctx, src.Rel); ferr != nil {
			slog.Warn("Failed to clear page state", logfields.Page(src.Rel), logfields.Error(ferr))
		}
		return failedPage(src, err)
	}
	if p.Draft {
		slog.Debug("Skipping draft", logfields.Page(src.Rel))
		return pageOutcome{src: src, result: metrics.PageDraft}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return failedPage(src, ferrors.FileSystemError("failed to create page directory").WithCause(err).Build())
	}
	if err := os.WriteFile(dst, []byte(p.HTML), 0o644); err != nil {
		return failedPage(src, ferrors.FileSystemError("failed to write page").WithCause(err).Build())
	}

	if err := g.store.RecordPage(ctx, state.PageRecord{
		Source:      src.Rel,
		Output:      src.Output,
		Fingerprint: fingerprint,
		BuildID:     buildID,
	}); err != nil {
		slog.Warn("Failed to record page state", logfields.Page(src.Rel), logfields.Error(err))
	}

	slog.Debug("Rendered page",
		logfields.Page(src.Rel),
		logfields.Output(src.Output),
		logfields.Title(p.Title),
		logfields.Since(start))
	return pageOutcome{src: src, result: metrics.PageRendered}
}

// reuse reports whether the previous output of src is still current and, for staged
// builds, carries it into the workspace.
func (g *Generator) reuse(ctx context.Context, src Source, fingerprint, dst string) bool {
	stored, ok, err := g.store.PageFingerprint(ctx, src.Rel)
	if err != nil {
		slog.Warn("Failed to read page state", logfields.Page(src.Rel), logfields.Error(err))
		return false
	}
	if !ok || stored != fingerprint {
		return false
	}

	previous := filepath.Join(g.cfg.Output.Dir, filepath.FromSlash(src.Output))
	if _, err := os.Stat(previous); err != nil {
		return false
	}
	if filepath.Clean(previous) == filepath.Clean(dst) {
		return true
	}
	if err := copyFile(previous, dst); err != nil {
		slog.Warn("Failed to reuse previous output", logfields.Page(src.Rel), logfields.Error(err))
		return false
	}
	return true
}

func (g *Generator) recordBuild(ctx context.Context, report *Report, log *slog.Logger) {
	err := g.store.RecordBuild(ctx, state.BuildRecord{
		ID:        report.BuildID,
		StartedAt: report.StartedAt,
		Duration:  report.Duration,
		Outcome:   string(report.Outcome),
		Rendered:  report.Rendered,
		Unchanged: report.Unchanged,
		Drafts:    report.Drafts,
		Failed:    len(report.Failed),
	})
	if err != nil {
		log.Warn("Failed to record build", logfields.Error(err))
	}
}

func failedPage(src Source, err error) pageOutcome {
	if classified, ok := ferrors.AsClassified(err); ok {
		err = classified.WithContext("page", src.Rel)
	} else {
		err = ferrors.BuildError("page failed").WithCause(err).WithContext("page", src.Rel).Build()
	}
	return pageOutcome{src: src, result: metrics.PageFailed, err: err}
}

func partition(sources []Source) (pages, assets []Source) {
	for _, src := range sources {
		if src.IsAsset {
			assets = append(assets, src)
		} else {
			pages = append(pages, src)
		}
	}
	return pages, assets
}

func outcomeFor(err error, report *Report) metrics.BuildOutcome {
	switch {
	case err == nil && len(report.Failed) == 0:
		return metrics.BuildSuccess
	case err == nil:
		return metrics.BuildWarning
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.BuildCanceled
	default:
		return metrics.BuildFailed
	}
}
