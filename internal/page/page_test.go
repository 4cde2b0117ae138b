package page

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"first line", "# Hello\n\nbody", "Hello"},
		{"later line", "intro\n\n# Later", "Later"},
		{"leading whitespace", "   # Indented  ", "Indented"},
		{"crlf", "# Windows\r\nbody", "Windows"},
		{"skips deeper headings", "## Two\n# One", "One"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTitle(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTitleMissing(t *testing.T) {
	for _, doc := range []string{"", "no heading", "## only h2", "#nospace"} {
		_, err := ExtractTitle(doc)
		require.Error(t, err, doc)
		assert.True(t, errors.Is(err, ErrNoTitle), doc)
	}
}

func TestTemplateApplyReplacesAllOccurrences(t *testing.T) {
	tmpl, err := ParseTemplate("t", "<title>{{ Title }}</title><h1>{{ Title }}</h1><main>{{ Content }}</main>")
	require.NoError(t, err)

	got := tmpl.Apply("T", "<p>x</p>")
	assert.Equal(t, "<title>T</title><h1>T</h1><main><p>x</p></main>", got)
}

func TestTemplateApplyIsSinglePass(t *testing.T) {
	tmpl, err := ParseTemplate("t", "<h1>{{ Title }}</h1>{{ Content }}")
	require.NoError(t, err)

	got := tmpl.Apply("{{ Content }}", "body")
	assert.Equal(t, "<h1>{{ Content }}</h1>body", got)
}

func TestTemplateMissingPlaceholderStillParses(t *testing.T) {
	tmpl, err := ParseTemplate("t", "<html><body>static</body></html>")
	require.NoError(t, err)
	assert.Equal(t, "<html><body>static</body></html>", tmpl.Apply("x", "y"))
}

func TestParseTemplateRejectsMisplacedPlaceholders(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"content in attribute value", `<div data-x="{{ Content }}"></div>`},
		{"content in title", "<title>{{ Content }}</title>"},
		{"content in script", "<script>var c = '{{ Content }}';</script>"},
		{"content in comment", "<!-- {{ Content }} -->"},
		{"placeholder as attribute name", "<div {{ Title }}>x</div>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate("t", tt.source)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTemplate))
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
		})
	}
}

func TestParseTemplateAcceptsLenientMarkup(t *testing.T) {
	sources := []string{
		`<meta name="title" content="{{ Title }}"><title>{{ Title }}</title>{{ Content }}`,
		"<<<</div></html><p",
		"</body></body><html><table><tr></td>{{ Content }}",
		DefaultTemplate,
	}
	for _, source := range sources {
		_, err := ParseTemplate("t", source)
		assert.NoError(t, err, source)
	}
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>{{ Title }}|{{ Content }}</p>"), 0o600))

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, path, tmpl.Name())

	def, err := LoadTemplate("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, def.Source())

	_, err = LoadTemplate(filepath.Join(dir, "missing.html"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestGenerate(t *testing.T) {
	tmpl, err := ParseTemplate("t", "<title>{{ Title }}</title>{{ Content }}")
	require.NoError(t, err)

	p, err := Generate([]byte("# Hello\n\nsome **text**"), tmpl)
	require.NoError(t, err)
	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, "<title>Hello</title><div><h1>Hello</h1><p>some <b>text</b></p></div>", p.HTML)
	assert.False(t, p.Draft)
	assert.NotEmpty(t, p.Fingerprint)
}

func TestGenerateFrontmatter(t *testing.T) {
	tmpl, err := ParseTemplate("t", "<title>{{ Title }}</title>{{ Content }}")
	require.NoError(t, err)

	src := []byte("---\ntitle: From Meta\ndraft: true\n---\nno heading here\n")
	p, err := Generate(src, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "From Meta", p.Title)
	assert.True(t, p.Draft)
	assert.Equal(t, "<title>From Meta</title><div><p>no heading here</p></div>", p.HTML)
}

func TestGenerateErrors(t *testing.T) {
	tmpl := MustDefault()

	_, err := Generate([]byte("body without title"), tmpl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoTitle))

	_, err = Generate([]byte("# T\n\nbroken **bold"), tmpl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, markdown.ErrUnbalancedDelimiter))
}

func TestRendererFingerprint(t *testing.T) {
	a, err := ParseTemplate("a", "<a>{{ Content }}</a>")
	require.NoError(t, err)
	b, err := ParseTemplate("b", "<b>{{ Content }}</b>")
	require.NoError(t, err)

	src := []byte("# T")
	native := NewRenderer(a, markdown.EngineNative)
	assert.Equal(t, native.Fingerprint(src), native.Fingerprint(src))
	assert.NotEqual(t, native.Fingerprint(src), native.Fingerprint([]byte("# U")))
	assert.NotEqual(t, native.Fingerprint(src), NewRenderer(b, markdown.EngineNative).Fingerprint(src))
	assert.NotEqual(t, native.Fingerprint(src), NewRenderer(a, markdown.EngineCommonMark).Fingerprint(src))
}
