package fastrouter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantType    ErrorType
		wantMessage string
	}{
		{
			name:        "401 maps to authentication",
			status:      401,
			body:        `{"error":{"message":"Invalid API key"}}`,
			wantType:    ErrorTypeAuthentication,
			wantMessage: "Invalid API key",
		},
		{
			name:        "403 maps to authentication",
			status:      403,
			body:        `{"error":{"message":"Forbidden"}}`,
			wantType:    ErrorTypeAuthentication,
			wantMessage: "Forbidden",
		},
		{
			name:        "429 carries upstream message",
			status:      429,
			body:        `{"error":{"message":"Rate limit exceeded","type":"rate_limit"}}`,
			wantType:    ErrorTypeAPI,
			wantMessage: "Rate limit exceeded",
		},
		{
			name:        "500 with non-JSON body falls back to body text",
			status:      500,
			body:        "upstream exploded",
			wantType:    ErrorTypeAPI,
			wantMessage: "upstream exploded",
		},
		{
			name:        "empty body falls back to generic message",
			status:      502,
			body:        "",
			wantType:    ErrorTypeAPI,
			wantMessage: "upstream returned HTTP 502",
		},
		{
			name:        "JSON without error.message falls back to body text",
			status:      400,
			body:        `{"detail":"bad field"}`,
			wantType:    ErrorTypeAPI,
			wantMessage: `{"detail":"bad field"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseAPIError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.wantMessage, err.Message)
		})
	}
}

func TestErrorFamilyCatch(t *testing.T) {
	// Any SDK error is catchable at the base *Error, wrapped or not.
	raised := fmt.Errorf("create: %w", NewValidationError("model must not be empty"))

	var e *Error
	require.True(t, errors.As(raised, &e))
	assert.Equal(t, ErrorTypeValidation, e.Type)
	assert.True(t, IsValidationError(raised))
	assert.False(t, IsAPIError(raised))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAPIError("request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, err.StatusCode)
}

func TestErrorMessageFormat(t *testing.T) {
	withStatus := ParseAPIError(429, []byte(`{"error":{"message":"slow down"}}`))
	assert.Equal(t, "api_error (HTTP 429): slow down", withStatus.Error())

	withoutStatus := NewAuthenticationError("no API key")
	assert.Equal(t, "authentication_error: no API key", withoutStatus.Error())
}
