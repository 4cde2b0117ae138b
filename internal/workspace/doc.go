// Package workspace manages the directory a build writes into, supporting both
// staged and in-place modes.
//
// Staged mode creates a fresh sibling of the output directory
// (e.g. .mdsite-staging-20251214-122336-123456), lets the build fill it and then
// swaps it into place with Promote. A failed build leaves the previous output
// untouched.
//
// In-place mode writes straight into the output directory; Promote and Cleanup
// are no-ops. This is used when output.clean is false.
package workspace
