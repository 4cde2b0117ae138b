// Package page turns one Markdown source into a complete HTML page: frontmatter is split
// off, the body is compiled, a title is chosen and both are substituted into a template.
package page
