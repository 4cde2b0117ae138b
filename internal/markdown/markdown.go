package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/foundation/normalization"
)

// Engine names a Markdown to HTML implementation.
type Engine string

const (
	// EngineNative is the block/inline compiler in this package.
	EngineNative Engine = "native"
	// EngineCommonMark renders with goldmark for documents outside the native dialect.
	EngineCommonMark Engine = "commonmark"
)

var engineNormalizer = normalization.NewNormalizer(map[string]Engine{
	"native":     EngineNative,
	"commonmark": EngineCommonMark,
	"goldmark":   EngineCommonMark,
}, EngineNative)

// NormalizeEngine maps a configured engine name to an Engine, defaulting to native.
func NormalizeEngine(raw string) Engine {
	return engineNormalizer.Normalize(raw)
}

// Converter renders a Markdown document body to an HTML fragment.
// Implementations must be safe for concurrent use.
type Converter interface {
	Convert(markdown string) (string, error)
}

// NativeConverter renders with CompileDocument.
type NativeConverter struct{}

func (NativeConverter) Convert(markdown string) (string, error) {
	return ToHTML(markdown)
}

// CommonMarkConverter renders with goldmark (GFM extensions, raw HTML allowed, which
// matches the unescaped output of the native engine). The result is wrapped in a div
// so both engines produce the same outer shape.
type CommonMarkConverter struct {
	md goldmark.Markdown
}

// NewCommonMarkConverter builds a goldmark-backed converter.
func NewCommonMarkConverter() *CommonMarkConverter {
	return &CommonMarkConverter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (c *CommonMarkConverter) Convert(markdown string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("<div>")
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", ferrors.MarkdownError("commonmark conversion failed").WithCause(err).Build()
	}
	buf.WriteString("</div>")
	return buf.String(), nil
}

// NewConverter returns the converter for engine.
func NewConverter(engine Engine) Converter {
	if engine == EngineCommonMark {
		return NewCommonMarkConverter()
	}
	return NativeConverter{}
}

// ParseEngine is NormalizeEngine that rejects unknown names. Empty input selects native.
func ParseEngine(raw string) (Engine, error) {
	return engineNormalizer.NormalizeWithError(raw)
}
