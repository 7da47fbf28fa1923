package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no record exists for the key.
var ErrNotFound = errors.New("not found")

// ValidationError is a user-correctable request problem.
type ValidationError struct {
	Message string
	// CachedRating/CachedReviews are echoed back when a stored record exists.
	CachedRating  *float64
	CachedReviews *int64
}

func (e *ValidationError) Error() string { return e.Message }

// UpstreamError reports a failed call to the enrichment provider.
// Code is the HTTP status, or 0 for transport and decoding failures.
// Detail holds a truncated diagnostic, usually the response body.
type UpstreamError struct {
	Code    int
	Message string
	Detail  string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError wraps a record store failure during write-back.
type PersistenceError struct {
	AccountID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist account %s: %v", e.AccountID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
