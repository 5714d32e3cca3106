package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/sakif/bookshelf/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"unauthenticated", apperror.Unauthenticated("me"), 401, "unauthenticated"},
		{"invalid credentials", apperror.InvalidCredentials(), 401, "invalid_credentials"},
		{"not found", apperror.NotFound("user", "u1"), 404, "not_found"},
		{"conflict", apperror.Conflict("user", "a@x.com"), 409, "conflict"},
		{"validation", apperror.ValidationFailed("email", "bad email"), 400, "validation_error"},
		{"unavailable", apperror.Unavailable("book catalog"), 502, "catalog_unavailable"},
		{"unknown", errors.New("sql: database is locked"), 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if body.Error != tt.wantType {
				t.Errorf("error type = %q, want %q", body.Error, tt.wantType)
			}
			if body.Message == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestWriteError_WrappedErrorStillMaps(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("service/shelf: saving book: %w", apperror.Unauthenticated("saveBook")))

	if rec.Code != 401 {
		t.Errorf("status = %d, want 401 for wrapped Unauthenticated", rec.Code)
	}
}

func TestWriteError_UnknownErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("sqlite: secret table path /var/lib/x.db"))

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Message != "An internal error occurred" {
		t.Errorf("internal error leaked detail: %q", body.Message)
	}
}
