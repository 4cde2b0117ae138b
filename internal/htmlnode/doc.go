// Package htmlnode is the render target of the Markdown compiler: a small tree of
// leaf and parent nodes that renders to an HTML string.
//
// Rendering performs no escaping. Text and attribute values are written verbatim,
// so callers own whatever they put into the tree.
package htmlnode
