package page

import (
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/mdsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
)

// Page is one assembled HTML document.
type Page struct {
	Title       string
	HTML        string
	Draft       bool
	Fingerprint string
}

// Renderer assembles pages with a fixed template and Markdown engine. It holds no
// mutable state and may be shared between goroutines.
type Renderer struct {
	Template  *Template
	Converter markdown.Converter
	Engine    markdown.Engine
}

// NewRenderer returns a renderer for the given template and engine.
func NewRenderer(tmpl *Template, engine markdown.Engine) *Renderer {
	return &Renderer{
		Template:  tmpl,
		Converter: markdown.NewConverter(engine),
		Engine:    engine,
	}
}

// Generate assembles a page with the native engine.
func Generate(source []byte, tmpl *Template) (*Page, error) {
	return NewRenderer(tmpl, markdown.EngineNative).Render(source)
}

// Fingerprint identifies the output of Render for source without rendering it. It
// changes whenever the source, the template or the engine changes.
func (r *Renderer) Fingerprint(source []byte) string {
	return mdfp.CalculateFingerprintFromParts(string(r.Engine)+"\n"+r.Template.Source(), string(source))
}

// Render splits frontmatter, compiles the body and applies the template. A frontmatter
// title takes precedence over the first "# " line of the body.
func (r *Renderer) Render(source []byte) (*Page, error) {
	meta, body, err := frontmatter.Split(source)
	if err != nil {
		return nil, err
	}

	content, err := r.Converter.Convert(string(body))
	if err != nil {
		return nil, err
	}

	title := meta.Title
	if title == "" {
		if title, err = ExtractTitle(string(body)); err != nil {
			return nil, err
		}
	}

	return &Page{
		Title:       title,
		HTML:        r.Template.Apply(title, content),
		Draft:       meta.Draft,
		Fingerprint: r.Fingerprint(source),
	}, nil
}
