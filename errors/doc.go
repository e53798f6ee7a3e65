// Package errors provides structured error types for the resource-guard library.
//
// Errors are categorized by Op (the operation that failed) and Kind (error
// category). The Error type carries the affected path and a cause chain, so
// OS-level failures remain inspectable after wrapping.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.Open("/etc/missing", osErr)   // [open] not_found at /etc/missing (caused by: ...)
//	err := errors.Release(name, closeErr)       // [release] closed at name (caused by: ...)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when Op and Kind agree, so callers
// can test for a failure category without string comparison.
package errors
