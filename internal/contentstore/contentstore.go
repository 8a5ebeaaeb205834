// Package contentstore talks to the content-addressed backend that holds the
// raw bytes of uploaded files. The backend derives an object's identifier
// from its bytes, so identical content always yields the identical hash.
package contentstore

import (
	"context"
	"fmt"
)

// FailureReason classifies a failed call against the content store so
// callers can decide whether a retry makes sense.
type FailureReason string

const (
	ReasonAuth      FailureReason = "auth"
	ReasonQuota     FailureReason = "quota"
	ReasonSize      FailureReason = "size"
	ReasonTransient FailureReason = "transient"
)

// PinResult identifies pinned content and where it can be retrieved from.
type PinResult struct {
	ContentHash  string
	RetrievalURL string
}

// PinError reports a failed pin or unpin call.
type PinError struct {
	Reason FailureReason
	Err    error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("content store failure (%s): %v", e.Reason, e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }

// Store pins raw bytes into a content-addressed backend and unpins them by
// hash. Calls can be slow and fallible; callers pass a bounded context.
//
// Unpin of content that is already gone reports success, so deletes stay
// idempotent.
type Store interface {
	Pin(ctx context.Context, data []byte, fileName, mimeType string) (PinResult, error)
	Unpin(ctx context.Context, contentHash string) error
}
