package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "busline/pkg/errors"
	httputil "busline/pkg/http"
	"busline/pkg/logger"
	"busline/pkg/token"
)

const IdentityKey contextKey = "identity"

// Identity is the decoded actor attached to the request context after a
// successful token verification.
type Identity struct {
	UserID primitive.ObjectID
}

type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Authenticate gates a route on a valid bearer token. A missing header and
// a failed verification are both 401; no handler or persistence code runs
// for a rejected request.
func Authenticate(verifier TokenVerifier, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			raw, ok := bearerToken(r)
			if !ok {
				if err := httputil.WriteError(w, apperrors.Unauthenticated("No token, authorization denied")); err != nil {
					log.Error("failed to write error response", "middleware", "Authenticate", "error", err)
				}
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				log.Warn("Token verification failed", "path", r.URL.Path, "error", err)
				if writeErr := httputil.WriteError(w, apperrors.InvalidToken("Invalid token")); writeErr != nil {
					log.Error("failed to write error response", "middleware", "Authenticate", "error", writeErr)
				}
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				log.Warn("Token carries malformed user id", "error", err)
				if writeErr := httputil.WriteError(w, apperrors.InvalidToken("Invalid token")); writeErr != nil {
					log.Error("failed to write error response", "middleware", "Authenticate", "error", writeErr)
				}
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, Identity{UserID: userID})
			next(w, r.WithContext(ctx), ps)
		}
	}
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	return identity, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
