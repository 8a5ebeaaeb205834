package contentstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// MemoryStore is an in-memory Store used in tests. It hashes content the
// same way the S3 store does and supports failure injection.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PinErr and UnpinErr, when set, are returned by the corresponding call
	// instead of touching the object map.
	PinErr   error
	UnpinErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Pin(ctx context.Context, data []byte, fileName, mimeType string) (PinResult, error) {
	if err := ctx.Err(); err != nil {
		return PinResult{}, &PinError{Reason: ReasonTransient, Err: err}
	}
	if s.PinErr != nil {
		return PinResult{}, s.PinErr
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[hash] = append([]byte(nil), data...)

	return PinResult{
		ContentHash:  hash,
		RetrievalURL: "memory://" + hash,
	}, nil
}

func (s *MemoryStore) Unpin(ctx context.Context, contentHash string) error {
	if err := ctx.Err(); err != nil {
		return &PinError{Reason: ReasonTransient, Err: err}
	}
	if s.UnpinErr != nil {
		return s.UnpinErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Missing content is fine: unpin is idempotent.
	delete(s.objects, contentHash)
	return nil
}

// Contains reports whether content with the given hash is currently pinned.
func (s *MemoryStore) Contains(contentHash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[contentHash]
	return ok
}

// Len returns the number of pinned objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
