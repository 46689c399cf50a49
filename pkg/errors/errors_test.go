package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Bus"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("malformed id"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("no token"), CodeUnauthenticated, http.StatusUnauthorized},
		{"invalid token", InvalidToken("bad token"), CodeInvalidToken, http.StatusUnauthorized},
		{"unauthorized", Unauthorized("denied"), CodeUnauthorized, http.StatusUnauthorized},
		{"conflict", Conflict("seat taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"unavailable", Unavailable("database"), CodeUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", tc.err.Code, tc.wantCode)
			}
			if tc.err.StatusCode() != tc.wantStatus {
				t.Errorf("status = %d, want %d", tc.err.StatusCode(), tc.wantStatus)
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Bus", "64f1a2b3c4d5e6f708192a3b")
	if err.Details["resource"] != "Bus" {
		t.Errorf("resource detail = %v", err.Details["resource"])
	}
	if err.Details["id"] != "64f1a2b3c4d5e6f708192a3b" {
		t.Errorf("id detail = %v", err.Details["id"])
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Internal("query failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is must see through AppError to the cause")
	}
	if err.Error() == cause.Error() {
		t.Error("AppError message must add context over the cause")
	}
}

func TestErrorString(t *testing.T) {
	plain := NotFound("Booking")
	if got := plain.Error(); got != "NOT_FOUND: Booking not found" {
		t.Errorf("unexpected error string: %q", got)
	}

	wrapped := Wrap(fmt.Errorf("timeout"), CodeInternal, "lookup failed", http.StatusInternalServerError)
	if got := wrapped.Error(); got != "INTERNAL_ERROR: lookup failed (caused by: timeout)" {
		t.Errorf("unexpected error string: %q", got)
	}
}

func TestAsAppError(t *testing.T) {
	original := Conflict("seat taken")
	if got := AsAppError(original); got != original {
		t.Error("an AppError must pass through unchanged")
	}

	converted := AsAppError(fmt.Errorf("raw failure"))
	if converted.Code != CodeInternal {
		t.Errorf("expected internal wrapper, got %s", converted.Code)
	}
	if converted.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", converted.StatusCode())
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(NotFound("User")) {
		t.Error("expected true for AppError")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected false for plain error")
	}
}
