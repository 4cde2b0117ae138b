// Package errors provides foundational, type-safe error primitives used across mdsite.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, markdown, template, filesystem, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, backoff, user action)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit codes and terminal presentation
//
// Example usage:
//
//	err := errors.WrapError(ErrUnbalancedDelimiter, errors.CategoryMarkdown, "unbalanced delimiter").
//		WithContext("delimiter", "**").
//		WithContext("block_index", 3).
//		Build()
package errors
