package services

import "errors"

// Sentinel errors surfaced by the review engine. Controllers map these to
// HTTP status codes; anything else is treated as an infrastructure failure.
var (
	// ErrAbstractNotFound is returned both when the abstract does not exist
	// and when the caller is not allowed to see it, so unauthorized callers
	// cannot probe for abstract existence.
	ErrAbstractNotFound = errors.New("abstract not found")

	ErrCategoryNotFound = errors.New("category not found")

	ErrInvalidDecision     = errors.New("invalid review decision")
	ErrDeadlineExpired     = errors.New("revision deadline has passed")
	ErrNotAwaitingRevision = errors.New("abstract is not awaiting revision")
	ErrNoValidReviewers    = errors.New("no valid reviewers to assign")

	// ErrConflict wraps a transaction conflict (deadlock, lock wait timeout).
	// The operation was rolled back and is safe to retry as-is.
	ErrConflict = errors.New("transaction conflict")
)
