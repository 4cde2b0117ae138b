// Package frontmatter reads the metadata block at the top of a Markdown source.
package frontmatter

import (
	"bytes"

	fm "github.com/adrg/frontmatter"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Meta is the page metadata recognised by the generator. Unknown keys are kept in Params.
type Meta struct {
	Title       string         `yaml:"title" toml:"title" json:"title"`
	Description string         `yaml:"description" toml:"description" json:"description"`
	Draft       bool           `yaml:"draft" toml:"draft" json:"draft"`
	Params      map[string]any `yaml:",inline" toml:"-" json:"-"`
}

// Split separates the frontmatter from the Markdown body. YAML (---), TOML (+++) and
// JSON blocks are accepted. A document without frontmatter yields a zero Meta and the
// full input as body.
func Split(source []byte) (Meta, []byte, error) {
	var meta Meta
	body, err := fm.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Meta{}, nil, ferrors.MarkdownError("invalid frontmatter").WithCause(err).Build()
	}
	return meta, body, nil
}

// Has reports whether source starts with a frontmatter block.
func Has(source []byte) bool {
	var meta Meta
	_, err := fm.MustParse(bytes.NewReader(source), &meta)
	return err == nil
}
