package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "inkwell/pkg/domain"
	request "inkwell/pkg/platform/middleware/request"
	"inkwell/pkg/requestcontext"
)

// SessionCookieName carries the session token for browser clients.
const SessionCookieName = "blog_session"

// JWTValidator defines the interface for validating session tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker reports whether a token was revoked by logout.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	UserID string
	JTI    string // JWT ID for revocation tracking
}

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) id.UserID {
	return requestcontext.UserID(ctx)
}

// TokenFromRequest returns the bearer token, falling back to the session
// cookie.
func TokenFromRequest(r *http.Request) (string, bool) {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		token := strings.TrimSpace(after)
		return token, token != ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

type authenticator struct {
	validator JWTValidator
	revoked   TokenRevocationChecker
	logger    *slog.Logger
}

// authenticate resolves the caller. ok is false when no token was presented;
// a non-empty reason means a token was presented and rejected.
func (a authenticator) authenticate(r *http.Request) (userID id.UserID, ok bool, status int, reason string) {
	token, present := TokenFromRequest(r)
	if !present {
		return id.UserID{}, false, 0, ""
	}
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		a.logger.WarnContext(ctx, "unauthorized access - invalid token",
			"error", err,
			"request_id", requestID,
		)
		return id.UserID{}, false, http.StatusUnauthorized, "Invalid or expired token"
	}
	if a.revoked != nil && claims.JTI != "" {
		revoked, err := a.revoked.IsTokenRevoked(ctx, claims.JTI)
		if err != nil {
			a.logger.ErrorContext(ctx, "failed to check token revocation",
				"error", err,
				"request_id", requestID,
			)
			return id.UserID{}, false, http.StatusInternalServerError, "Failed to validate token"
		}
		if revoked {
			a.logger.WarnContext(ctx, "unauthorized access - token revoked",
				"jti", claims.JTI,
				"request_id", requestID,
			)
			return id.UserID{}, false, http.StatusUnauthorized, "Token has been revoked"
		}
	}
	userID, err = id.ParseUserID(claims.UserID)
	if err != nil {
		a.logger.WarnContext(ctx, "unauthorized access - invalid subject",
			"request_id", requestID,
		)
		return id.UserID{}, false, http.StatusUnauthorized, "Invalid or expired token"
	}
	return userID, true, 0, ""
}

func statusCode(status int) string {
	if status == http.StatusInternalServerError {
		return "internal_error"
	}
	return "unauthorized"
}

// RequireAuth rejects requests without a valid session.
func RequireAuth(validator JWTValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	a := authenticator{validator: validator, revoked: revocationChecker, logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok, status, reason := a.authenticate(r)
			if !ok {
				if reason == "" {
					ctx := r.Context()
					logger.WarnContext(ctx, "unauthorized access - missing token",
						"request_id", request.GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
					return
				}
				writeJSONError(w, status, statusCode(status), reason)
				return
			}
			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the user when a valid session is presented. Missing,
// expired and revoked tokens are served anonymously.
func OptionalAuth(validator JWTValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	a := authenticator{validator: validator, revoked: revocationChecker, logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok, status, reason := a.authenticate(r)
			if !ok {
				if status == http.StatusInternalServerError {
					writeJSONError(w, status, statusCode(status), reason)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
