// Package errors provides error handling for tact.
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
//	if errors.Is(err, errors.ErrJobNotFound) {
//	    // handle not found
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
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll

	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Common sentinel errors used across tact.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrUnparsableSchedule indicates a schedule descriptor matched no known
	// form. A job with an unparsable schedule is never selected as due by
	// schedule; it is not a cycle failure.
	ErrUnparsableSchedule = New("unparsable schedule")

	// ErrJobNotFound indicates the requested scheduled job does not exist
	ErrJobNotFound = New("job not found")

	// ErrRunNotFound indicates the requested run-history record does not exist
	ErrRunNotFound = New("run not found")

	// ErrJobClaimed indicates another scheduler invocation holds the claim on
	// a due job
	ErrJobClaimed = New("job claimed by another invocation")

	// ErrStoreUnavailable indicates the job store cannot be reached; fatal for
	// the whole invocation cycle
	ErrStoreUnavailable = New("job store unavailable")
)

// IsJobNotFound checks if an error is or wraps ErrJobNotFound
func IsJobNotFound(err error) bool {
	return err != nil && Is(err, ErrJobNotFound)
}

// IsUnparsableSchedule checks if an error is or wraps ErrUnparsableSchedule
func IsUnparsableSchedule(err error) bool {
	return err != nil && Is(err, ErrUnparsableSchedule)
}

// IsJobClaimed checks if an error is or wraps ErrJobClaimed
func IsJobClaimed(err error) bool {
	return err != nil && Is(err, ErrJobClaimed)
}

// WrapJobNotFound creates a job-not-found error carrying the job ID
func WrapJobNotFound(jobID string) error {
	return Wrapf(ErrJobNotFound, "job %s", jobID)
}
