package markdown

import (
	"strconv"
	"strings"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/htmlnode"
)

// CompileDocument compiles a whole document into a div containing one node per block.
func CompileDocument(markdown string) (*htmlnode.Node, error) {
	blocks := Blocks(markdown)
	children := make([]*htmlnode.Node, 0, len(blocks))
	for i, b := range blocks {
		node, err := compileTyped(b.Text, b.Type)
		if err != nil {
			return nil, withBlock(err, i, b.Type)
		}
		children = append(children, node)
	}
	return htmlnode.Parent("div", children), nil
}

// ToHTML compiles and renders a document.
func ToHTML(markdown string) (string, error) {
	root, err := CompileDocument(markdown)
	if err != nil {
		return "", err
	}
	return root.Render()
}

// CompileBlock compiles one block according to its classification.
func CompileBlock(block string) (*htmlnode.Node, error) {
	return compileTyped(block, Classify(block))
}

func compileTyped(block string, typ BlockType) (*htmlnode.Node, error) {
	switch typ {
	case BlockParagraph:
		return paragraphNode(block)
	case BlockHeading:
		return headingNode(block)
	case BlockCode:
		return codeNode(block), nil
	case BlockQuote:
		return quoteNode(block)
	case BlockUnorderedList:
		return unorderedListNode(block)
	case BlockOrderedList:
		return orderedListNode(block)
	default:
		return nil, ferrors.WrapError(ErrUnknownBlockType, ferrors.CategoryInternal, "no compile rule for block type").
			Fatal().
			WithContext("block_type", typ.String()).
			Build()
	}
}

// inlineChildren parses text and returns its span nodes.
func inlineChildren(text string) ([]*htmlnode.Node, error) {
	spans, err := ParseInline(text)
	if err != nil {
		return nil, err
	}
	return SpansToNodes(spans)
}

func inlineParent(tag, text string) (*htmlnode.Node, error) {
	children, err := inlineChildren(text)
	if err != nil {
		return nil, err
	}
	return htmlnode.Parent(tag, children), nil
}

func paragraphNode(block string) (*htmlnode.Node, error) {
	return inlineParent("p", joinLines(strings.Split(block, "\n")))
}

func headingNode(block string) (*htmlnode.Node, error) {
	level := HeadingLevel(block)
	if level < 1 || level > 6 {
		return nil, ferrors.MarkdownError("heading level must be between 1 and 6").
			WithCause(ErrInvalidHeadingLevel).
			WithContext("level", level).
			Build()
	}
	text := strings.TrimPrefix(block[level:], " ")
	return inlineParent("h"+strconv.Itoa(level), joinLines(strings.Split(text, "\n")))
}

// codeNode strips the fences and keeps the content literal. The opening fence line
// may carry an info string, which becomes a language class on the code element.
func codeNode(block string) *htmlnode.Node {
	var content, info string
	if opening, rest, ok := strings.Cut(block, "\n"); ok {
		info = strings.TrimSpace(strings.TrimPrefix(opening, fence))
		content = strings.TrimSuffix(rest, fence)
	} else if len(block) >= 2*len(fence) {
		content = block[len(fence) : len(block)-len(fence)]
	}

	var attrs []htmlnode.Attribute
	if info != "" {
		attrs = append(attrs, htmlnode.Attr("class", "language-"+info))
	}
	code := htmlnode.Parent("code", []*htmlnode.Node{htmlnode.Text(content)}, attrs...)
	return htmlnode.Parent("pre", []*htmlnode.Node{code})
}

func quoteNode(block string) (*htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	stripped := make([]string, 0, len(lines))
	for i, line := range lines {
		rest, ok := strings.CutPrefix(line, ">")
		if !ok {
			return nil, malformedLine("quote line must start with >", i, line)
		}
		stripped = append(stripped, strings.TrimLeft(rest, " \t"))
	}
	return inlineParent("blockquote", joinLines(stripped))
}

func unorderedListNode(block string) (*htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	items := make([]*htmlnode.Node, 0, len(lines))
	for _, line := range lines {
		// A continuation line without the marker becomes an item of its own.
		item, err := listItem(strings.TrimPrefix(line, "- "))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return htmlnode.Parent("ul", items), nil
}

func orderedListNode(block string) (*htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	items := make([]*htmlnode.Node, 0, len(lines))
	for _, line := range lines {
		text := line
		if _, rest, ok := strings.Cut(line, ". "); ok {
			text = rest
		}
		item, err := listItem(text)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return htmlnode.Parent("ol", items), nil
}

// listItem wraps the inline content of one item in li. An item with no content
// renders as an empty li.
func listItem(text string) (*htmlnode.Node, error) {
	children, err := inlineChildren(text)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		children = []*htmlnode.Node{htmlnode.Text("")}
	}
	return htmlnode.Parent("li", children), nil
}

func joinLines(lines []string) string {
	return strings.Join(lines, " ")
}

func malformedLine(msg string, line int, text string) error {
	return ferrors.MarkdownError(msg).WithCause(ErrMalformedBlock).
		WithContext("line", line+1).
		WithContext("text", text).
		Build()
}

// withBlock attaches the failing block's position to a classified error.
func withBlock(err error, index int, typ BlockType) error {
	if classified, ok := ferrors.AsClassified(err); ok {
		return classified.WithContext("block_index", index).WithContext("block_type", typ.String())
	}
	return err
}
