// Package errors provides error handling for implgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrGenerationNotFound) {
//	    // retry without qualifier
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Sentinel errors for the resolution-and-generation pipeline.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrPreconditionFailed indicates the cursor is not on a qualifying type
	// identifier. The only user-visible failure; raised before any I/O.
	ErrPreconditionFailed = New("cursor is not on a type declaration identifier")

	// ErrResourceUnavailable indicates an unreadable file or a buffer that
	// could not be created. Logged and degraded to an empty result.
	ErrResourceUnavailable = New("resource unavailable")

	// ErrFileNotFound indicates a file could not be opened for scratch parsing
	ErrFileNotFound = New("file not found")

	// ErrEmptyBuffer indicates a zero-length file was loaded. Logged, not fatal.
	ErrEmptyBuffer = New("buffer is empty")

	// ErrSearchTimeout indicates the symbol search exceeded its deadline.
	// Degrades to an empty result list.
	ErrSearchTimeout = New("symbol search timed out")

	// ErrStaleSearch indicates a search response was superseded by a newer
	// query and must never reach the caller.
	ErrStaleSearch = New("search superseded by newer query")

	// ErrGenerationNotFound indicates the generation utility did not recognize
	// the requested interface. Triggers exactly one unqualified retry.
	ErrGenerationNotFound = New("interface not found by generator")

	// ErrGenerationFailed indicates a nonzero exit or unusable generator
	// output. Logged; nothing is inserted.
	ErrGenerationFailed = New("stub generation failed")

	// ErrMissingReceiverText indicates the receiver node had no source text
	ErrMissingReceiverText = New("receiver has no source text")

	// ErrStructuralAnchorMissing indicates the receiver's enclosing declaration
	// could not be walked. Defensive; unreachable given the precondition check.
	ErrStructuralAnchorMissing = New("enclosing declaration not found")
)

// IsGenerationNotFound checks if an error is or wraps ErrGenerationNotFound
func IsGenerationNotFound(err error) bool {
	return err != nil && Is(err, ErrGenerationNotFound)
}

// IsStaleSearch checks if an error is or wraps ErrStaleSearch
func IsStaleSearch(err error) bool {
	return err != nil && Is(err, ErrStaleSearch)
}

// IsSearchTimeout checks if an error is or wraps ErrSearchTimeout
func IsSearchTimeout(err error) bool {
	return err != nil && Is(err, ErrSearchTimeout)
}
