package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	meta, body, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, Meta{}, meta)
	require.Equal(t, string(input), string(body))
	require.False(t, Has(input))
}

func TestSplit_YAMLFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: Override\ndraft: true\nauthor: someone\n---\n# Title\n")

	meta, body, err := Split(input)
	require.NoError(t, err)
	assert.Equal(t, "Override", meta.Title)
	assert.True(t, meta.Draft)
	assert.Equal(t, "someone", meta.Params["author"])
	assert.Contains(t, string(body), "# Title")
	assert.NotContains(t, string(body), "draft")
	assert.True(t, Has(input))
}

func TestSplit_TOMLFrontmatter(t *testing.T) {
	input := []byte("+++\ntitle = \"From TOML\"\n+++\nbody text\n")

	meta, body, err := Split(input)
	require.NoError(t, err)
	assert.Equal(t, "From TOML", meta.Title)
	assert.Contains(t, string(body), "body text")
}

func TestSplit_InvalidYAML_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: [unclosed\n---\nbody\n")

	_, _, err := Split(input)
	require.Error(t, err)
}
