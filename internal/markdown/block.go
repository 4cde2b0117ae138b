package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockType classifies a block of Markdown.
type BlockType int

const (
	BlockParagraph BlockType = iota
	BlockHeading
	BlockCode
	BlockQuote
	BlockUnorderedList
	BlockOrderedList
)

var blockTypeNames = [...]string{
	BlockParagraph:     "paragraph",
	BlockHeading:       "heading",
	BlockCode:          "code",
	BlockQuote:         "quote",
	BlockUnorderedList: "unordered_list",
	BlockOrderedList:   "ordered_list",
}

func (t BlockType) String() string {
	if t >= 0 && int(t) < len(blockTypeNames) {
		return blockTypeNames[t]
	}
	return fmt.Sprintf("block(%d)", int(t))
}

const fence = "```"

// First-line patterns, checked in this order.
var blockPatterns = []struct {
	re   *regexp.Regexp
	kind BlockType
}{
	{regexp.MustCompile(`^#{1,6} .`), BlockHeading},
	{regexp.MustCompile(`^> \S`), BlockQuote},
	{regexp.MustCompile(`^- \S`), BlockUnorderedList},
	{regexp.MustCompile(`^\d+\. \S`), BlockOrderedList},
}

// Segment splits a document into blocks separated by blank lines. A fenced code
// region is always a single block, blank lines included. An unterminated fence runs
// to the end of the document.
func Segment(doc string) []string {
	var (
		blocks  []string
		current []string
		inFence bool
	)

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSuffix(line, "\r")
		isFence := strings.HasPrefix(strings.TrimSpace(line), fence)

		if inFence {
			current = append(current, line)
			if isFence {
				inFence = false
				flush()
			}
			continue
		}

		switch {
		case isFence:
			// Lines above an opening fence form their own block, so a fence always
			// starts a block and its content is never merged into a paragraph.
			flush()
			inFence = true
			current = append(current, line)
		case strings.TrimSpace(line) == "":
			flush()
		default:
			current = append(current, line)
		}
	}
	flush()
	return blocks
}

// Classify returns the type of a block. Code is a whole-block check; every other type
// is decided by the first line alone.
func Classify(block string) BlockType {
	if strings.HasPrefix(block, fence) && strings.HasSuffix(block, fence) {
		return BlockCode
	}

	first, _, _ := strings.Cut(block, "\n")
	for _, p := range blockPatterns {
		if p.re.MatchString(first) {
			return p.kind
		}
	}
	return BlockParagraph
}

// HeadingLevel counts the leading '#' characters of a block.
func HeadingLevel(block string) int {
	return len(block) - len(strings.TrimLeft(block, "#"))
}

// Blocks segments and classifies a document.
func Blocks(doc string) []Block {
	raw := Segment(doc)
	out := make([]Block, len(raw))
	for i, text := range raw {
		out[i] = Block{Text: text, Type: Classify(text)}
	}
	return out
}

// Block is a segmented block with its classification.
type Block struct {
	Text string
	Type BlockType
}
