package service

import (
	"errors"
	"fmt"

	"github.com/vaultix/vaultix/internal/contentstore"
)

var (
	// ErrNotFound is returned for files that are absent, deleted, or owned
	// by someone else, and for unknown share tokens. Callers get the same
	// answer in all cases so existence never leaks to non-owners.
	ErrNotFound = errors.New("file not found")

	// ErrDuplicateContent is returned when the owner already has an active
	// record for byte-identical content.
	ErrDuplicateContent = errors.New("identical content already uploaded")

	// ErrShareTokenCollision is returned by the repository when a freshly
	// minted share token is already taken. The share manager regenerates.
	ErrShareTokenCollision = errors.New("share token already in use")
)

// ValidationError reports invalid caller input. No state changes when one
// is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError wraps a content store failure. Either the whole operation
// committed or none of its effects did; the caller may retry transient
// failures.
type UpstreamError struct {
	Op  string // "pin" or "unpin"
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("content store %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Reason surfaces the content store's failure classification.
func (e *UpstreamError) Reason() contentstore.FailureReason {
	var pinErr *contentstore.PinError
	if errors.As(e.Err, &pinErr) {
		return pinErr.Reason
	}
	return contentstore.ReasonTransient
}
