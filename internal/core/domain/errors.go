package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreNotInitialized indicates an operation ran before the index
	// store was opened. This is a fatal precondition violation.
	ErrStoreNotInitialized = errors.New("index store not initialised")

	// ErrBuildConflict indicates another process is actively building
	// against the same store. Never auto-resolved; the caller decides
	// whether to wait, take over or abort.
	ErrBuildConflict = errors.New("another build is in progress")

	// ErrBuildInterrupted indicates the store records a build whose
	// heartbeat went stale: a crashed or interrupted run. The caller
	// decides whether to resume or restart.
	ErrBuildInterrupted = errors.New("a previous build was interrupted")

	// ErrBuildCancelled indicates the build observed a cancellation
	// request and stopped at the next per-file check point.
	ErrBuildCancelled = errors.New("build cancelled")

	// ErrOrphanTranslation indicates a translation whose content hash has
	// no matching message. Dropped, not fatal, during bulk passes.
	ErrOrphanTranslation = errors.New("translation references unknown message")
)

// ParseError describes a malformed or unexpected node shape in one file.
// A parse error skips the file; it never aborts a whole build.
type ParseError struct {
	// Path is the offending file.
	Path string

	// Line is the 1-based line where parsing failed, 0 if unknown.
	Line int

	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingReferenceError describes a fragment or bundle reference whose
// target does not resolve to an existing file. Logged and skipped.
type MissingReferenceError struct {
	// From is the referencing file.
	From string

	// Ref is the reference as written in source.
	Ref string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s references missing file %s", e.From, e.Ref)
}
