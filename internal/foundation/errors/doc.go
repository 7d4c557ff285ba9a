// Package errors provides foundational, type-safe error primitives used across docgraph.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, validation, reference, build, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing formatting
//
// Example usage:
//
//	err := errors.ReferenceError("pagination target does not exist").
//		WithContext("doc_id", doc.ID).
//		WithContext("target", target).
//		Build()
package errors
