package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/berkedogan/tasks-api/internal/api/shared"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/redact"
	"github.com/berkedogan/tasks-api/internal/service/auth"
)

// DefaultCookieName is the session cookie read when none is configured.
const DefaultCookieName = "authToken"

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	cookieName string
}

// NewAuthMiddleware creates a new AuthMiddleware. Tokens are read from the
// named cookie or from an Authorization: Bearer header.
func NewAuthMiddleware(jwtService auth.JWTService, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		cookieName: cookieName,
	}
}

// Authenticate validates the session token and adds its subject to the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.tokenFromRequest(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContext(r.Context()).Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithSubject(r.Context(), claims.Subject)))
	})
}

// AuthenticateOrTrigger accepts either a session token or, when triggerToken
// is set, an Authorization: Bearer header equal to it. External schedulers
// use the trigger token for the reset pass.
func (m *AuthMiddleware) AuthenticateOrTrigger(triggerToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authenticated := m.Authenticate(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if triggerToken != "" {
				if bearer, ok := bearerToken(r); ok &&
					subtle.ConstantTimeCompare([]byte(bearer), []byte(triggerToken)) == 1 {
					next.ServeHTTP(w, r.WithContext(shared.WithSubject(r.Context(), "trigger")))
					return
				}
			}
			authenticated.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) tokenFromRequest(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r); ok {
		return token, true
	}
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
