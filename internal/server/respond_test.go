package server

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"resumescore/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectStatus  int
		expectCode    string
		expectMessage string
		expectLogged  bool
	}{
		{
			name:          "validation",
			err:           errors.NewValidationError(errors.ErrCodeInvalidRequest, "Filename exceeds the maximum of 255", nil),
			expectStatus:  http.StatusBadRequest,
			expectCode:    errors.ErrCodeInvalidRequest,
			expectMessage: "Filename exceeds the maximum of 255",
		},
		{
			name:          "too large",
			err:           errors.NewIOError(errors.ErrCodeFileTooLarge, "file too large", nil),
			expectStatus:  http.StatusRequestEntityTooLarge,
			expectCode:    errors.ErrCodeFileTooLarge,
			expectMessage: "file too large",
		},
		{
			name:          "plain error becomes internal",
			err:           fmt.Errorf("disk on fire"),
			expectStatus:  http.StatusInternalServerError,
			expectCode:    errors.ErrCodeInternal,
			expectMessage: "an unexpected error occurred",
			expectLogged:  true,
		},
		{
			name:          "io error details are hidden",
			err:           errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read /srv/tmp/upload", nil),
			expectStatus:  http.StatusInternalServerError,
			expectCode:    errors.ErrCodeFileNotReadable,
			expectMessage: "an unexpected error occurred",
			expectLogged:  true,
		},
		{
			name:         "cancelled",
			err:          fmt.Errorf("scoring: %w", context.Canceled),
			expectStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			s := newTestServer(t, nil)
			s.Logger = errors.NewLoggerTo(&logs, slog.LevelDebug)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/score", nil)
			s.writeAppError(rec, req, tt.err)

			assert.Equal(t, tt.expectStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, errorTitles[tt.expectStatus], resp.Error)
			assert.Equal(t, tt.expectCode, resp.Code)
			assert.Equal(t, tt.expectMessage, resp.Message)
			if tt.expectLogged {
				assert.Contains(t, logs.String(), "Request failed")
				assert.Contains(t, logs.String(), `"error_type":"`)
			} else {
				assert.NotContains(t, logs.String(), "Request failed")
			}
		})
	}
}
