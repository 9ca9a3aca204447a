package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/middleware"
	"github.com/koshapp/kosh-backend/internal/service"
)

// AuthHandler handles registration, login and session HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Currency string `json:"currency,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// LoginRequest represents the login request body. AuthMode selects the
// credential the login produces: "token" or "session".
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	AuthMode string `json:"authMode"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Currency    string  `json:"currency"`
	Timezone    string  `json:"timezone"`
	LastLoginAt *string `json:"lastLoginAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token,omitempty"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Register(service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Currency: req.Currency,
		Timezone: req.Timezone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrPasswordTooShort) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "password", Message: "Password must be at least 8 characters"},
			})
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "email", Message: "A valid email address is required"},
			})
		}
		if errors.Is(err, domain.ErrEmailTaken) {
			return NewConflictError(c, "Email is already registered")
		}
		log.Error().Err(err).Msg("Failed to register user")
		return NewInternalError(c, "Failed to register user")
	}

	log.Info().Int32("user_id", user.ID).Msg("User registered")
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login godoc
// @Summary Log in
// @Description Verify credentials and issue a JWT (token mode) or a session cookie (session mode)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.authService.Login(service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Mode:     service.AuthMode(req.AuthMode),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAuthMode) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "authMode", Message: "Must be one of: token, session"},
			})
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Invalid email or password")
		}
		if errors.Is(err, domain.ErrUserDeactivated) {
			return NewForbiddenError(c, "Account is deactivated")
		}
		log.Error().Err(err).Msg("Failed to log in user")
		return NewInternalError(c, "Failed to log in")
	}

	if result.Session != nil {
		c.SetCookie(&http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    result.Session.ID.String(),
			Path:     "/",
			Expires:  result.Session.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	log.Info().Int32("user_id", result.User.ID).Str("auth_mode", req.AuthMode).Msg("User logged in")
	return c.JSON(http.StatusOK, LoginResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

// Me godoc
// @Summary Get the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ProblemDetails
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewUnauthorizedError(c, "User not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to load user")
		return NewInternalError(c, "Failed to load user")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout godoc
// @Summary Log out the current session
// @Description Revokes the session for session-mode logins. Token-mode clients simply discard the token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} ProblemDetails
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if sessionID := middleware.GetSessionID(c); sessionID != uuid.Nil {
		if err := h.authService.Logout(sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			log.Error().Err(err).Int32("user_id", userID).Msg("Failed to revoke session")
			return NewInternalError(c, "Failed to log out")
		}
		c.SetCookie(&http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
		})
	}

	log.Info().Int32("user_id", userID).Msg("User logged out")
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll godoc
// @Summary Revoke every session of the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} ProblemDetails
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.authService.LogoutAll(userID); err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to revoke sessions")
		return NewInternalError(c, "Failed to log out")
	}

	log.Info().Int32("user_id", userID).Msg("All sessions revoked")
	return c.NoContent(http.StatusNoContent)
}

func toUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Currency:  user.Currency,
		Timezone:  user.Timezone,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		s := user.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &s
	}
	return resp
}
