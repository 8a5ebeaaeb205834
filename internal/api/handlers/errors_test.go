package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vaultix/vaultix/internal/contentstore"
	"github.com/vaultix/vaultix/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation",
			err:        &service.ValidationError{Field: "file", Reason: "must not be empty"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate content",
			err:        service.ErrDuplicateContent,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "not found",
			err:        service.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "upstream transient",
			err: &service.UpstreamError{Op: "pin", Err: &contentstore.PinError{
				Reason: contentstore.ReasonTransient,
				Err:    errors.New("timeout"),
			}},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "upstream size",
			err: &service.UpstreamError{Op: "pin", Err: &contentstore.PinError{
				Reason: contentstore.ReasonSize,
				Err:    errors.New("too large"),
			}},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			// Internal details never reach the response body.
			assert.NotContains(t, rec.Body.String(), "boom")
			assert.NotContains(t, rec.Body.String(), "timeout")
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc", nil)

	assert.Equal(t, 3, queryInt(r, "page", 1))
	assert.Equal(t, 10, queryInt(r, "limit", 10))
	assert.Equal(t, 1, queryInt(r, "missing", 1))
}
