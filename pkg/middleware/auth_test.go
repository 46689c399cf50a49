package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"busline/pkg/logger"
	"busline/pkg/token"
)

type stubVerifier struct {
	claims *token.Claims
	err    error
}

func (s *stubVerifier) Verify(tokenString string) (*token.Claims, error) {
	return s.claims, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func protectedRoute(t *testing.T, verifier TokenVerifier, handlerCalled *bool, gotIdentity *Identity) http.Handler {
	t.Helper()
	router := httprouter.New()
	authn := Authenticate(verifier, testLogger())
	router.GET("/protected", authn(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		*handlerCalled = true
		if identity, ok := IdentityFromContext(r.Context()); ok {
			*gotIdentity = identity
		}
		w.WriteHeader(http.StatusOK)
	}))
	return router
}

func TestAuthenticate_MissingHeaderRejected(t *testing.T) {
	var called bool
	var identity Identity
	router := protectedRoute(t, &stubVerifier{}, &called, &identity)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"bearer without token", "Bearer "},
		{"token without scheme", "eyJhbGciOiJIUzI1NiJ9.x.y"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if called {
				t.Error("handler must not run for a rejected request")
			}
		})
	}
}

func TestAuthenticate_InvalidTokenRejected(t *testing.T) {
	var called bool
	var identity Identity
	verifier := &stubVerifier{err: errors.New("signature mismatch")}
	router := protectedRoute(t, verifier, &called, &identity)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tampered.token.here")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("handler must not run for an invalid token")
	}
}

func TestAuthenticate_MalformedUserIDRejected(t *testing.T) {
	var called bool
	var identity Identity
	verifier := &stubVerifier{claims: &token.Claims{UserID: "not-an-object-id"}}
	router := protectedRoute(t, verifier, &called, &identity)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some.valid.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("handler must not run when the token names no valid user")
	}
}

func TestAuthenticate_ValidTokenPassesIdentity(t *testing.T) {
	userID := primitive.NewObjectID()
	var called bool
	var identity Identity
	verifier := &stubVerifier{claims: &token.Claims{UserID: userID.Hex()}}
	router := protectedRoute(t, verifier, &called, &identity)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some.valid.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Fatal("handler should have run")
	}
	if identity.UserID != userID {
		t.Errorf("identity user %s, want %s", identity.UserID.Hex(), userID.Hex())
	}
}

func TestBearerToken_SchemeIsCaseInsensitive(t *testing.T) {
	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", scheme+" abc.def.ghi")
		raw, ok := bearerToken(req)
		if !ok || raw != "abc.def.ghi" {
			t.Errorf("scheme %q: expected token extraction, got %q ok=%v", scheme, raw, ok)
		}
	}
}
