// Package markdown turns Markdown text into an htmlnode tree.
//
// Parsing happens in two stages. Block parsing splits a document into blank-line
// separated blocks (fenced code is kept whole) and classifies each block by its first
// line. Inline parsing turns the text of a block into typed spans: images first, then
// links, then code, bold and italic delimiter runs.
//
// The package supports a deliberately small dialect: no nested inline spans, no nested
// lists and no HTML escaping. Every failure aborts the document.
package markdown
