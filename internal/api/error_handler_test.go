package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-store/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"wrapped role not found", fmt.Errorf("add role: %w", domain.ErrRoleNotFound), http.StatusNotFound, "role not found"},
		{"user exists", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"concurrency", domain.ErrConcurrencyFailure, http.StatusConflict, "concurrent modification, retry"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"locked out", domain.ErrLockedOut, http.StatusLocked, "user is locked out"},
		{"import queue", fmt.Errorf("enqueue: %w", domain.ErrImportUnavailable), http.StatusServiceUnavailable, "import queue unavailable"},
		{"echo error", echo.NewHTTPError(http.StatusUnprocessableEntity, "name is required"), http.StatusUnprocessableEntity, "name is required"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/v1/users/u1", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, resp.Error)
			}
		})
	}
}
