package page

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// Placeholders recognised in a template. No others are substituted.
const (
	TitlePlaceholder   = "{{ Title }}"
	ContentPlaceholder = "{{ Content }}"
)

// DefaultTemplate is used when no template file is configured.
const DefaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ Title }}</title>
<link href="/index.css" rel="stylesheet">
</head>
<body>
<article>
{{ Content }}
</article>
</body>
</html>
`

// ErrInvalidTemplate indicates a placeholder in a position where substitution
// would not produce the intended markup.
var ErrInvalidTemplate = errors.New("invalid page template")

// rawTextElements hold text that browsers do not parse as markup.
var rawTextElements = map[string]bool{
	"title":    true,
	"script":   true,
	"style":    true,
	"textarea": true,
}

// Template is a page shell with title and content placeholders.
type Template struct {
	source string
	name   string
}

// ParseTemplate parses source as HTML and rejects placeholders that cannot be
// substituted safely. A missing placeholder is only a warning because a template
// without a title slot is still usable.
func ParseTemplate(name, source string) (*Template, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, ferrors.TemplateError("failed to parse template").
			WithCause(err).
			WithContext("template", name).
			Build()
	}
	if placeholder, where := misplacedPlaceholder(doc); placeholder != "" {
		return nil, ferrors.TemplateError(placeholder+" cannot be used in "+where).
			WithCause(ErrInvalidTemplate).
			WithContext("template", name).
			Build()
	}

	for _, placeholder := range []string{TitlePlaceholder, ContentPlaceholder} {
		if !strings.Contains(source, placeholder) {
			slog.Warn("Template is missing a placeholder",
				slog.String("template", name),
				slog.String("placeholder", placeholder))
		}
	}

	return &Template{source: source, name: name}, nil
}

// misplacedPlaceholder walks the parsed tree depth first. Content is markup, so it may
// not sit in an attribute, a comment or a raw text element. No placeholder may form
// an attribute name.
func misplacedPlaceholder(n *html.Node) (placeholder, where string) {
	switch n.Type {
	case html.ElementNode:
		for _, a := range n.Attr {
			if strings.Contains(a.Key, "{{") {
				return "a placeholder", "an attribute name of <" + n.Data + ">"
			}
			if strings.Contains(a.Val, ContentPlaceholder) {
				return ContentPlaceholder, "attribute " + a.Key + " of <" + n.Data + ">"
			}
		}
	case html.CommentNode:
		if strings.Contains(n.Data, ContentPlaceholder) {
			return ContentPlaceholder, "a comment"
		}
	case html.TextNode:
		if p := n.Parent; p != nil && p.Type == html.ElementNode && rawTextElements[p.Data] &&
			strings.Contains(n.Data, ContentPlaceholder) {
			return ContentPlaceholder, "<" + p.Data + ">"
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if placeholder, where := misplacedPlaceholder(c); placeholder != "" {
			return placeholder, where
		}
	}
	return "", ""
}

// LoadTemplate reads and parses a template file. An empty path selects DefaultTemplate.
func LoadTemplate(path string) (*Template, error) {
	if path == "" {
		return ParseTemplate("default", DefaultTemplate)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.NotFoundError("template file not found").
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.FileSystemError("failed to read template").WithCause(err).
			WithContext("path", path).
			Build()
	}
	slog.Debug("Loaded template", logfields.Path(path))
	return ParseTemplate(path, string(data))
}

// MustDefault returns the parsed DefaultTemplate.
func MustDefault() *Template {
	t, err := ParseTemplate("default", DefaultTemplate)
	if err != nil {
		panic(err)
	}
	return t
}

// Name identifies the template in logs.
func (t *Template) Name() string { return t.name }

// Source returns the unsubstituted template text.
func (t *Template) Source() string { return t.source }

// Apply replaces every occurrence of both placeholders. Replacement is a single pass,
// so placeholder text inside title or content is left alone.
func (t *Template) Apply(title, content string) string {
	return strings.NewReplacer(TitlePlaceholder, title, ContentPlaceholder, content).Replace(t.source)
}
