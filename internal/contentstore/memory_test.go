package contentstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePinAndUnpin(t *testing.T) {
	s := NewMemoryStore()
	data := []byte("hello")

	result, err := s.Pin(context.Background(), data, "hello.txt", "text/plain")
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), result.ContentHash)
	assert.NotEmpty(t, result.RetrievalURL)
	assert.True(t, s.Contains(result.ContentHash))

	// Identical content pins to the same address.
	again, err := s.Pin(context.Background(), data, "other-name.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, result.ContentHash, again.ContentHash)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Unpin(context.Background(), result.ContentHash))
	assert.False(t, s.Contains(result.ContentHash))

	// Unpinning absent content is not an error.
	assert.NoError(t, s.Unpin(context.Background(), result.ContentHash))
}

func TestMemoryStoreHonorsContext(t *testing.T) {
	s := NewMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Pin(ctx, []byte("x"), "a", "text/plain")
	var pinErr *PinError
	require.ErrorAs(t, err, &pinErr)
	assert.Equal(t, ReasonTransient, pinErr.Reason)
	assert.Equal(t, 0, s.Len())
}
