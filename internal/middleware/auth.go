package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the cookie carrying a session-mode credential
const SessionCookieName = "kosh_session"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
	// SessionIDKey is the context key for the session ID, set only for
	// session-mode requests
	SessionIDKey contextKey = "session_id"
)

// Verifier resolves credentials to user IDs. Token and session are separate
// calls because they are separate auth modes, never guessed from the request.
type Verifier interface {
	VerifyToken(token string) (int32, error)
	VerifySession(sessionID uuid.UUID) (int32, error)
}

// AuthMiddleware authenticates requests by bearer token or session cookie
type AuthMiddleware struct {
	verifier Verifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate returns an Echo middleware that resolves the request's
// credential to a user. A bearer token is checked as a JWT; failing that,
// the session cookie is checked. A request carrying neither is rejected.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
				}

				userID, err := m.verifier.VerifyToken(parts[1])
				if err != nil {
					log.Debug().Err(err).Msg("Token validation failed")
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}

				ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}

			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				sessionID, err := uuid.Parse(cookie.Value)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid session cookie")
				}

				userID, err := m.verifier.VerifySession(sessionID)
				if err != nil {
					log.Debug().Err(err).Str("session_id", sessionID.String()).Msg("Session validation failed")
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
				}

				ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
				ctx = context.WithValue(ctx, SessionIDKey, sessionID)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}

			return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
		}
	}
}

// GetUserID extracts the authenticated user's ID from the context
func GetUserID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(UserIDKey).(int32); ok {
		return id
	}
	return 0
}

// GetSessionID extracts the session ID from the context. Returns uuid.Nil
// for token-mode requests.
func GetSessionID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(SessionIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
