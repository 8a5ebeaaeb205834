package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	state, err := GenerateState(map[string]string{"flow": "register"})
	require.NoError(t, err)

	data, err := DecodeState(state)
	require.NoError(t, err)
	assert.Equal(t, "register", data["flow"])
}

func TestDecodeStateRejectsMalformed(t *testing.T) {
	_, err := DecodeState("no-separator")
	assert.Error(t, err)

	_, err = DecodeState("a.b.c")
	assert.Error(t, err)

	_, err = DecodeState("nonce.!!!not-base64!!!")
	assert.Error(t, err)
}
