package markdown

import (
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

var (
	imagePattern = regexp.MustCompile(`!\[([^\[\]]*)\]\(([^\(\)]*)\)`)
	linkPattern  = regexp.MustCompile(`\[([^\[\]]*)\]\(([^\(\)]*)\)`)
)

// delimiterPasses run in this order: code before bold so that markers inside code
// survive, bold before italic so that "**" is consumed whole.
var delimiterPasses = []struct {
	delim string
	kind  SpanKind
}{
	{"`", SpanCode},
	{"**", SpanBold},
	{"_", SpanItalic},
}

// ParseInline converts one string of inline Markdown into spans.
func ParseInline(text string) ([]Span, error) {
	spans := []Span{Plain(text)}
	spans = SplitImages(spans)
	spans = SplitLinks(spans)
	for _, pass := range delimiterPasses {
		var err error
		spans, err = SplitDelimiter(spans, pass.delim, pass.kind)
		if err != nil {
			return nil, err
		}
	}
	return spans, nil
}

// SplitImages extracts ![alt](url) from plain spans.
func SplitImages(spans []Span) []Span {
	return splitPattern(spans, imagePattern, SpanImage, nil)
}

// SplitLinks extracts [text](url) from plain spans. A match directly preceded by
// '!' is image syntax and stays plain.
func SplitLinks(spans []Span) []Span {
	return splitPattern(spans, linkPattern, SpanLink, func(text string, start int) bool {
		return start > 0 && text[start-1] == '!'
	})
}

// splitPattern replaces every accepted match of re in plain spans with a span of kind,
// keeping the text around it as plain spans. Non-plain spans pass through.
func splitPattern(spans []Span, re *regexp.Regexp, kind SpanKind, reject func(text string, start int) bool) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Kind != SpanPlain {
			out = append(out, s)
			continue
		}

		text := s.Content
		last := 0
		offset := 0
		for offset <= len(text) {
			loc := re.FindStringSubmatchIndex(text[offset:])
			if loc == nil {
				break
			}
			start, end := offset+loc[0], offset+loc[1]
			if reject != nil && reject(text, start) {
				offset = start + 1
				continue
			}
			if start > last {
				out = append(out, Plain(text[last:start]))
			}
			out = append(out, Span{
				Kind:    kind,
				Content: text[offset+loc[2] : offset+loc[3]],
				Target:  text[offset+loc[4] : offset+loc[5]],
			})
			last = end
			offset = end
		}

		switch {
		case last == 0:
			out = append(out, s)
		case last < len(text):
			out = append(out, Plain(text[last:]))
		}
	}
	return out
}

// SplitDelimiter splits plain spans on delim. Odd pieces become kind, even pieces stay
// plain. Empty plain pieces are dropped, empty pieces of kind are kept.
func SplitDelimiter(spans []Span, delim string, kind SpanKind) ([]Span, error) {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Kind != SpanPlain {
			out = append(out, s)
			continue
		}

		pieces := strings.Split(s.Content, delim)
		if len(pieces)%2 == 0 {
			return nil, ferrors.MarkdownError("opening delimiter "+delim+" without matching closing delimiter").
				WithCause(ErrUnbalancedDelimiter).
				WithContext("delimiter", delim).
				WithContext("text", s.Content).
				Build()
		}

		for i, piece := range pieces {
			if i%2 == 0 {
				if piece != "" {
					out = append(out, Plain(piece))
				}
				continue
			}
			out = append(out, Span{Kind: kind, Content: piece})
		}
	}
	return out, nil
}
