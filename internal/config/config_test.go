package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "45s")
	assert.Equal(t, 45*time.Second, getEnvDuration("TEST_TIMEOUT", time.Minute))

	t.Setenv("TEST_TIMEOUT", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvDuration("TEST_TIMEOUT", time.Minute))

	assert.Equal(t, time.Minute, getEnvDuration("TEST_TIMEOUT_UNSET", time.Minute))
}

func TestCorsConfigAllowsFrontend(t *testing.T) {
	opts := CorsConfig("https://app.example.com")

	assert.Equal(t, []string{"https://app.example.com"}, opts.AllowedOrigins)
	assert.True(t, opts.AllowCredentials)
}
