package markdown

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/htmlnode"
)

// SpanKind is the type of an inline span.
type SpanKind int

const (
	SpanPlain SpanKind = iota
	SpanBold
	SpanItalic
	SpanCode
	SpanLink
	SpanImage
)

var spanKindNames = [...]string{
	SpanPlain:  "plain",
	SpanBold:   "bold",
	SpanItalic: "italic",
	SpanCode:   "code",
	SpanLink:   "link",
	SpanImage:  "image",
}

func (k SpanKind) String() string {
	if k >= 0 && int(k) < len(spanKindNames) {
		return spanKindNames[k]
	}
	return fmt.Sprintf("span(%d)", int(k))
}

// Span is a typed run of inline text. Target is the URL of a link or image and
// empty for every other kind.
type Span struct {
	Kind    SpanKind
	Content string
	Target  string
}

// Plain returns a text span.
func Plain(s string) Span { return Span{Kind: SpanPlain, Content: s} }

// Bold returns a bold span.
func Bold(s string) Span { return Span{Kind: SpanBold, Content: s} }

// Italic returns an italic span.
func Italic(s string) Span { return Span{Kind: SpanItalic, Content: s} }

// Code returns an inline code span.
func Code(s string) Span { return Span{Kind: SpanCode, Content: s} }

// Link returns a link span with anchor text and target URL.
func Link(text, url string) Span { return Span{Kind: SpanLink, Content: text, Target: url} }

// Image returns an image span with alt text and source URL.
func Image(alt, url string) Span { return Span{Kind: SpanImage, Content: alt, Target: url} }

// String formats the span for test failures and debug logs.
func (s Span) String() string {
	if s.Kind == SpanLink || s.Kind == SpanImage {
		return fmt.Sprintf("%s(%q, %q)", s.Kind, s.Content, s.Target)
	}
	return fmt.Sprintf("%s(%q)", s.Kind, s.Content)
}

// SpanToNode maps a span to its leaf node.
func SpanToNode(s Span) (*htmlnode.Node, error) {
	switch s.Kind {
	case SpanPlain:
		return htmlnode.Text(s.Content), nil
	case SpanBold:
		return htmlnode.Leaf("b", s.Content), nil
	case SpanItalic:
		return htmlnode.Leaf("i", s.Content), nil
	case SpanCode:
		return htmlnode.Leaf("code", s.Content), nil
	case SpanLink:
		return htmlnode.Leaf("a", s.Content, htmlnode.Attr("href", s.Target)), nil
	case SpanImage:
		return htmlnode.Leaf("img", "", htmlnode.Attr("src", s.Target), htmlnode.Attr("alt", s.Content)), nil
	default:
		return nil, ferrors.WrapError(ErrUnknownSpanKind, ferrors.CategoryInternal, "span kind has no html mapping").
			Fatal().
			WithContext("kind", s.Kind.String()).
			Build()
	}
}

// SpansToNodes maps spans to leaf nodes in order.
func SpansToNodes(spans []Span) ([]*htmlnode.Node, error) {
	nodes := make([]*htmlnode.Node, 0, len(spans))
	for _, s := range spans {
		n, err := SpanToNode(s)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
