// Run with: go test ./internal/apperror/ -v
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Each case checks that errors.Is() identifies the sentinel behind an AppError,
// including when the AppError itself has been wrapped with fmt.Errorf("%w").

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("link event", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("state", "state token is malformed"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Configuration wraps ErrConfiguration",
			err:       Configuration("GITHUB_CLIENT_ID", "not set"),
			target:    ErrConfiguration,
			wantMatch: true,
		},
		{
			name:      "wrapped Configuration still matches",
			err:       fmt.Errorf("service/link: %w", Configuration("BACKEND_BASE_URL", "not set")),
			target:    ErrConfiguration,
			wantMatch: true,
		},
		{
			name:      "Forbidden does NOT match ErrConfiguration",
			err:       Forbidden("state subject mismatch"),
			target:    ErrConfiguration,
			wantMatch: false,
		},
		{
			name:      "Configuration does NOT match ErrValidation",
			err:       Configuration("GITHUB_CLIENT_ID", "not set"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("link event", "abc123"),
			wantMessage: "link event not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("state", "state token is malformed"),
			wantMessage: "state token is malformed",
		},
		{
			name:        "Configuration message is prefixed with the key",
			err:         Configuration("GITHUB_CLIENT_ID", "not set"),
			wantMessage: "GITHUB_CLIENT_ID: not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := Configuration("BACKEND_BASE_URL", "not set")

	if err.Unwrap() != ErrConfiguration {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrConfiguration)
	}
}

func TestConfigurationField(t *testing.T) {
	// Operators grep logs by the config key, so it must be kept on the error.
	err := Configuration("BACKEND_BASE_URL", "must include scheme and host")

	if err.Field != "BACKEND_BASE_URL" {
		t.Errorf("Field = %q, want %q", err.Field, "BACKEND_BASE_URL")
	}
}
