package markdown

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/htmlnode"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "headings and paragraph",
			doc:  "# this is an h1\n\nthis is paragraph text\n\n## this is an h2",
			want: "<div><h1>this is an h1</h1><p>this is paragraph text</p><h2>this is an h2</h2></div>",
		},
		{
			name: "unordered list with inline markup",
			doc:  "- a\n- b\n- and _c_",
			want: "<div><ul><li>a</li><li>b</li><li>and <i>c</i></li></ul></div>",
		},
		{
			name: "code block content is literal",
			doc:  "```\nx _y_ z\n```",
			want: "<div><pre><code>x _y_ z\n</code></pre></div>",
		},
		{
			name: "code block info string",
			doc:  "```go\nfmt.Println(1)\n```",
			want: "<div><pre><code class=\"language-go\">fmt.Println(1)\n</code></pre></div>",
		},
		{
			name: "multi line paragraph joins with spaces",
			doc:  "one\ntwo **three**",
			want: "<div><p>one two <b>three</b></p></div>",
		},
		{
			name: "quote",
			doc:  "> first\n>second\n>   third",
			want: "<div><blockquote>first second third</blockquote></div>",
		},
		{
			name: "ordered list with multi digit markers",
			doc:  "9. nine\n10. ten",
			want: "<div><ol><li>nine</li><li>ten</li></ol></div>",
		},
		{
			name: "empty list item",
			doc:  "- a\n- ",
			want: "<div><ul><li>a</li><li></li></ul></div>",
		},
		{
			name: "unordered continuation line becomes an item",
			doc:  "- a\ncont",
			want: "<div><ul><li>a</li><li>cont</li></ul></div>",
		},
		{
			name: "ordered line without separator is kept whole",
			doc:  "1. a\n2 b",
			want: "<div><ol><li>a</li><li>2 b</li></ol></div>",
		},
		{
			name: "ordered line splits on first separator",
			doc:  "1. a. b\nnote. c",
			want: "<div><ol><li>a. b</li><li>c</li></ol></div>",
		},
		{
			name: "link and image",
			doc:  "[home](/) ![logo](/logo.png)",
			want: `<div><p><a href="/">home</a> <img src="/logo.png" alt="logo"></img></p></div>`,
		},
		{
			name: "seven hashes is a paragraph",
			doc:  "####### x",
			want: "<div><p>####### x</p></div>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToHTMLIsDeterministic(t *testing.T) {
	doc := "# t\n\nsome **bold** and _it_\n\n- x\n- y\n\n```\nraw\n```"
	first, err := ToHTML(doc)
	require.NoError(t, err)
	second, err := ToHTML(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	root, err := CompileDocument(doc)
	require.NoError(t, err)
	a, err := root.Render()
	require.NoError(t, err)
	b, err := root.Render()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, first, a)
}

func TestCompileBlockSingleLineCode(t *testing.T) {
	node, err := CompileBlock("```x := 1```")
	require.NoError(t, err)
	got, err := node.Render()
	require.NoError(t, err)
	assert.Equal(t, "<pre><code>x := 1</code></pre>", got)
}

func TestCompileBlockMalformed(t *testing.T) {
	tests := []struct {
		name  string
		block string
		line  int
	}{
		{"quote line without marker", "> a\nb", 2},
		{"quote third line without marker", "> a\n> b\nc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileBlock(tt.block)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedBlock))

			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, ferrors.CategoryMarkdown, classified.Category())
			assert.Equal(t, ferrors.RetryUserAction, classified.RetryStrategy())
			line, ok := classified.Context().Get("line")
			require.True(t, ok)
			assert.Equal(t, tt.line, line)
		})
	}
}

func TestCompileInvalidHeadingLevel(t *testing.T) {
	_, err := compileTyped("####### x", BlockHeading)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidHeadingLevel))
}

func TestCompileUnknownBlockType(t *testing.T) {
	_, err := compileTyped("x", BlockType(99))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBlockType))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInternal))
}

func TestCompileDocumentErrorCarriesBlockPosition(t *testing.T) {
	_, err := CompileDocument("fine\n\n# broken **bold")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnbalancedDelimiter))

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	idx, ok := classified.Context().Get("block_index")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	typ, ok := classified.Context().GetString("block_type")
	require.True(t, ok)
	assert.Equal(t, "heading", typ)
}

func TestToHTMLEmptyDocument(t *testing.T) {
	root, err := CompileDocument("")
	require.NoError(t, err)
	assert.Empty(t, root.Children())

	_, err = ToHTML("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, htmlnode.ErrStructure))
}

func TestConverters(t *testing.T) {
	native := NewConverter(NormalizeEngine("Native"))
	got, err := native.Convert("# t")
	require.NoError(t, err)
	assert.Equal(t, "<div><h1>t</h1></div>", got)

	cm := NewConverter(NormalizeEngine("goldmark"))
	require.IsType(t, &CommonMarkConverter{}, cm)
	got, err = cm.Convert("# t\n\n* star list")
	require.NoError(t, err)
	assert.Contains(t, got, "<h1>t</h1>")
	assert.Contains(t, got, "<li>star list</li>")
	assert.True(t, len(got) > len("<div></div>"))

	assert.Equal(t, EngineNative, NormalizeEngine("unknown"))
}
