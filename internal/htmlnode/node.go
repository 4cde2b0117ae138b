package htmlnode

import (
	"errors"
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

var (
	// ErrStructure indicates a parent node without a tag or without children.
	ErrStructure = errors.New("invalid html structure")

	// ErrMissingValue indicates a leaf node whose text was never set.
	ErrMissingValue = errors.New("leaf node has no value")
)

// Kind distinguishes the two node shapes.
type Kind int

const (
	KindLeaf Kind = iota
	KindParent
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindParent:
		return "parent"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is either a leaf (optional tag, text) or a parent (tag, ordered children).
// Nodes are not mutated after construction; a parent owns its children.
type Node struct {
	kind     Kind
	tag      string
	text     string
	hasText  bool
	attrs    Attributes
	children []*Node
}

// Leaf returns a leaf node. An empty tag renders the text without wrapping.
func Leaf(tag, text string, attrs ...Attribute) *Node {
	return &Node{
		kind:    KindLeaf,
		tag:     tag,
		text:    text,
		hasText: true,
		attrs:   NewAttributes(attrs...),
	}
}

// Text returns a tagless leaf that renders as raw text.
func Text(text string) *Node {
	return Leaf("", text)
}

// UnsetLeaf returns a leaf without a value. Rendering it fails with ErrMissingValue.
func UnsetLeaf(tag string, attrs ...Attribute) *Node {
	return &Node{
		kind:  KindLeaf,
		tag:   tag,
		attrs: NewAttributes(attrs...),
	}
}

// Parent returns a parent node owning children in order.
func Parent(tag string, children []*Node, attrs ...Attribute) *Node {
	owned := make([]*Node, len(children))
	copy(owned, children)
	return &Node{
		kind:     KindParent,
		tag:      tag,
		attrs:    NewAttributes(attrs...),
		children: owned,
	}
}

func (n *Node) Kind() Kind  { return n.kind }
func (n *Node) Tag() string { return n.tag }

// Value returns the leaf text and whether it was set.
func (n *Node) Value() (string, bool) { return n.text, n.hasText }

// Attrs returns a copy of the node attributes.
func (n *Node) Attrs() Attributes {
	return append(Attributes(nil), n.attrs...)
}

// Children returns a copy of the child slice.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Render renders the node tree to HTML.
func (n *Node) Render() (string, error) {
	return Render(n)
}

// Render renders node and its descendants to an HTML string.
func Render(node *Node) (string, error) {
	var b strings.Builder
	if err := render(&b, node); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(b *strings.Builder, n *Node) error {
	if n == nil {
		return structureError("nil node", "")
	}

	switch n.kind {
	case KindLeaf:
		if !n.hasText {
			return ferrors.RenderError("leaf node has no value").WithCause(ErrMissingValue).
				WithContext("tag", n.tag).
				Build()
		}
		if n.tag == "" {
			b.WriteString(n.text)
			return nil
		}
		openTag(b, n)
		b.WriteString(n.text)
		closeTag(b, n)
		return nil

	case KindParent:
		if n.tag == "" {
			return structureError("parent node has no tag", "")
		}
		if len(n.children) == 0 {
			return structureError("parent node has no children", n.tag)
		}
		openTag(b, n)
		for _, child := range n.children {
			if err := render(b, child); err != nil {
				return err
			}
		}
		closeTag(b, n)
		return nil

	default:
		return ferrors.InternalError("unknown node kind").
			WithContext("kind", n.kind.String()).
			Build()
	}
}

func openTag(b *strings.Builder, n *Node) {
	b.WriteByte('<')
	b.WriteString(n.tag)
	n.attrs.writeTo(b)
	b.WriteByte('>')
}

func closeTag(b *strings.Builder, n *Node) {
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
}

func structureError(msg, tag string) error {
	builder := ferrors.RenderError(msg).WithCause(ErrStructure)
	if tag != "" {
		builder = builder.WithContext("tag", tag)
	}
	return builder.Build()
}

// String returns a debug representation of the node, not HTML.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.kind == KindLeaf {
		if !n.hasText {
			return fmt.Sprintf("Leaf(tag=%q, value=<unset>, attrs=%q)", n.tag, n.attrs.String())
		}
		return fmt.Sprintf("Leaf(tag=%q, value=%q, attrs=%q)", n.tag, n.text, n.attrs.String())
	}
	parts := make([]string, 0, len(n.children))
	for _, c := range n.children {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("Parent(tag=%q, attrs=%q, children=[%s])", n.tag, n.attrs.String(), strings.Join(parts, ", "))
}
