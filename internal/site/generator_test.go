package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/page"
	"git.home.luguber.info/inful/mdsite/internal/state"
)

const testTemplate = "<html><head><title>{{ Title }}</title></head><body>{{ Content }}</body></html>"

type fixture struct {
	root string
	cfg  *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "content", "index.md"), "# Home\n\nWelcome to **mdsite**")
	writeFile(t, filepath.Join(root, "content", "blog", "post.md"), "# Post\n\n- a\n- b")
	writeFile(t, filepath.Join(root, "content", "blog", "draft.md"), "---\ndraft: true\n---\n# Draft\n")
	writeFile(t, filepath.Join(root, "content", "img", "logo.png"), "png")
	writeFile(t, filepath.Join(root, "static", "index.css"), "body{}")
	writeFile(t, filepath.Join(root, "template.html"), testTemplate)

	cfg := config.Default()
	cfg.Content.Dir = filepath.Join(root, "content")
	cfg.Static.Dir = filepath.Join(root, "static")
	cfg.Template.Path = filepath.Join(root, "template.html")
	cfg.Output.Dir = filepath.Join(root, "public")
	cfg.Output.Clean = true
	cfg.Build.Workers = 2
	return &fixture{root: root, cfg: cfg}
}

func (f *fixture) out(rel string) string {
	return filepath.Join(f.cfg.Output.Dir, filepath.FromSlash(rel))
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(f.out(rel))
	require.NoError(t, err)
	return string(data)
}

func setFailFast(cfg *config.Config, v bool) {
	cfg.Build.FailFast = &v
}

func TestBuild(t *testing.T) {
	f := newFixture(t)

	report, err := New(f.cfg).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, metrics.BuildSuccess, report.Outcome)
	assert.Equal(t, 2, report.Rendered)
	assert.Equal(t, 1, report.Drafts)
	assert.Equal(t, 1, report.Assets)
	assert.Equal(t, 1, report.StaticFiles)
	assert.Equal(t, 3, report.Pages())
	assert.NotEmpty(t, report.BuildID)

	assert.Equal(t,
		"<html><head><title>Home</title></head><body><div><h1>Home</h1><p>Welcome to <b>mdsite</b></p></div></body></html>",
		f.read(t, "index.html"))
	assert.Contains(t, f.read(t, "blog/post.html"), "<ul><li>a</li><li>b</li></ul>")
	assert.Equal(t, "png", f.read(t, "img/logo.png"))
	assert.Equal(t, "body{}", f.read(t, "index.css"))

	_, err = os.Stat(f.out("blog/draft.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildMatchesDirectRender(t *testing.T) {
	f := newFixture(t)
	_, err := New(f.cfg).Build(context.Background())
	require.NoError(t, err)

	tmpl, err := page.ParseTemplate("t", testTemplate)
	require.NoError(t, err)
	p, err := page.Generate([]byte("# Post\n\n- a\n- b"), tmpl)
	require.NoError(t, err)
	assert.Equal(t, p.HTML, f.read(t, "blog/post.html"))
}

func TestBuildCleanReplacesOutput(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.out("stale.html"), "old")

	_, err := New(f.cfg).Build(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(f.out("stale.html"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, f.out("index.html"))
}

func TestBuildInPlaceKeepsOtherFiles(t *testing.T) {
	f := newFixture(t)
	f.cfg.Output.Clean = false
	writeFile(t, f.out("keep.txt"), "keep")

	_, err := New(f.cfg).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "keep", f.read(t, "keep.txt"))
	assert.FileExists(t, f.out("index.html"))
}

func TestBuildFailFastLeavesPreviousOutput(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.cfg.Content.Dir, "bad.md"), "# Bad\n\nsome **oops")
	writeFile(t, f.out("previous.html"), "previous")

	report, err := New(f.cfg).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, markdown.ErrUnbalancedDelimiter))
	assert.Equal(t, metrics.BuildFailed, report.Outcome)
	require.NotEmpty(t, report.Failed)
	assert.Equal(t, "bad.md", report.Failed[0].Source)

	assert.Equal(t, "previous", f.read(t, "previous.html"))
	_, err = os.Stat(f.out("index.html"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "staging", "staging directory left behind")
	}
}

func TestBuildContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	setFailFast(f.cfg, false)
	writeFile(t, filepath.Join(f.cfg.Content.Dir, "bad.md"), "# Bad\n\nsome **oops")
	writeFile(t, filepath.Join(f.cfg.Content.Dir, "untitled.md"), "no title here")

	report, err := New(f.cfg).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, metrics.BuildWarning, report.Outcome)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, "bad.md", report.Failed[0].Source)
	assert.Equal(t, "untitled.md", report.Failed[1].Source)
	assert.True(t, errors.Is(report.Failed[1], page.ErrNoTitle))
	assert.Equal(t, 2, report.Rendered)
	assert.FileExists(t, f.out("index.html"))
}

func TestBuildIncremental(t *testing.T) {
	f := newFixture(t)
	f.cfg.Build.Incremental = true
	store := state.NewMemoryStore()
	gen := New(f.cfg, WithStore(store))
	ctx := context.Background()

	first, err := gen.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Rendered)
	assert.Zero(t, first.Unchanged)

	second, err := gen.Build(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Rendered)
	assert.Equal(t, 2, second.Unchanged)
	assert.Contains(t, f.read(t, "index.html"), "<h1>Home</h1>")

	writeFile(t, filepath.Join(f.cfg.Content.Dir, "blog", "post.md"), "# Post\n\nchanged")
	third, err := gen.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Rendered)
	assert.Equal(t, 1, third.Unchanged)
	assert.Contains(t, f.read(t, "blog/post.html"), "<p>changed</p>")

	last, ok, err := store.LastBuild(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, third.BuildID, last.ID)
}

func TestBuildIncrementalRerendersMissingOutput(t *testing.T) {
	f := newFixture(t)
	f.cfg.Build.Incremental = true
	f.cfg.Output.Clean = false
	gen := New(f.cfg, WithStore(state.NewMemoryStore()))

	_, err := gen.Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(f.out("index.html")))

	report, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rendered)
	assert.Equal(t, 1, report.Unchanged)
	assert.FileExists(t, f.out("index.html"))
}

func TestBuildCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(f.cfg).Build(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, metrics.BuildCanceled, report.Outcome)
	_, err = os.Stat(f.cfg.Output.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildMissingTemplate(t *testing.T) {
	f := newFixture(t)
	f.cfg.Template.Path = filepath.Join(f.root, "missing.html")

	_, err := New(f.cfg).Build(context.Background())
	require.Error(t, err)
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	pages    map[metrics.PageResult]int
	outcomes map[metrics.BuildOutcome]int
	static   int
}

func (c *countingRecorder) IncPageResult(r metrics.PageResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[r]++
}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[o]++
}

func (c *countingRecorder) AddStaticFiles(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.static += n
}

func TestBuildRecordsMetrics(t *testing.T) {
	f := newFixture(t)
	rec := &countingRecorder{
		pages:    map[metrics.PageResult]int{},
		outcomes: map[metrics.BuildOutcome]int{},
	}

	_, err := New(f.cfg, WithRecorder(rec)).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rec.pages[metrics.PageRendered])
	assert.Equal(t, 1, rec.pages[metrics.PageDraft])
	assert.Equal(t, 1, rec.outcomes[metrics.BuildSuccess])
	assert.Equal(t, 2, rec.static)
}
