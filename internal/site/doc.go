// Package site builds a complete output tree from a content directory: static assets
// are copied, Markdown sources are rendered into pages by a pool of workers and the
// result replaces the previous output only when the build succeeds.
package site
