package domain

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error taxonomy
// All conditions below are local and recoverable: they are reported to the
// caller and never terminate the process.
// -----------------------------------------------------------------------------

// Catalog errors
var (
	// ErrCatalogEmpty signals that a listing produced no milestones.
	// Callers render an empty state; nothing propagates further.
	ErrCatalogEmpty = errors.New("no milestones discovered in listing")
)

// Contest errors
var (
	ErrContestNotFound  = errors.New("contest not found")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrTestCaseLocked   = errors.New("test case is locked")
)

// ParseError reports malformed csv or json content for the declared format.
// It aborts scoring for the submission that triggered it, nothing else.
type ParseError struct {
	Format Format
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Format, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports a declared format outside csv/json/txt.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Format)
}

// FetchError wraps a failed listing, content, or persistence call. The
// triggering action must be retried by the user; there is no automatic retry.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError blocks a submission before any network call: missing
// selection, missing artifact, or missing authentication.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
