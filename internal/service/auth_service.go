package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// AuthMode selects how a login is authenticated afterwards. Token mode
// issues a stateless JWT; session mode creates a revocable server-side
// session row. The mode is chosen explicitly at login, never inferred from
// the shape of the request.
type AuthMode string

const (
	AuthModeToken   AuthMode = "token"
	AuthModeSession AuthMode = "session"
)

// Valid reports whether m is a known auth mode.
func (m AuthMode) Valid() bool {
	return m == AuthModeToken || m == AuthModeSession
}

// Claims is the JWT payload for token-mode logins
type Claims struct {
	UserID int32 `json:"uid"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and session lifecycle
type AuthService struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	sessionTTL  time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, sessionRepo domain.SessionRepository, jwtSecret []byte, tokenTTL, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		sessionTTL:  sessionTTL,
	}
}

// RegisterInput holds the input for registering a user
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Currency string
	Timezone string
}

const minPasswordLength = 8

// Register creates a new user with a bcrypt-hashed password
func (s *AuthService) Register(input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidCredentials
	}
	if len(input.Password) < minPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "INR"
	}
	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = "Asia/Kolkata"
	}

	return s.userRepo.Create(&domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Currency:     currency,
		Timezone:     timezone,
		IsActive:     true,
	})
}

// LoginInput holds the input for logging in
type LoginInput struct {
	Email    string
	Password string
	Mode     AuthMode
}

// LoginResult carries whichever credential the chosen mode produced
type LoginResult struct {
	User    *domain.User
	Token   string
	Session *domain.Session
}

// Login verifies credentials and issues a JWT or a session per the
// requested mode. Unknown emails and wrong passwords return the same error.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	if !input.Mode.Valid() {
		return nil, domain.ErrInvalidAuthMode
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrUserDeactivated
	}

	now := time.Now().UTC()
	result := &LoginResult{User: user}

	switch input.Mode {
	case AuthModeToken:
		token, err := s.issueToken(user.ID, now)
		if err != nil {
			return nil, err
		}
		result.Token = token
	case AuthModeSession:
		session, err := s.sessionRepo.Create(&domain.Session{
			ID:        uuid.New(),
			UserID:    user.ID,
			ExpiresAt: now.Add(s.sessionTTL),
		})
		if err != nil {
			return nil, err
		}
		result.Session = session
	}

	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	return result, nil
}

// GetUser returns the authenticated user's profile
func (s *AuthService) GetUser(userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(userID)
}

// Logout revokes a session-mode login. Token-mode logins are stateless and
// end when the client discards the token.
func (s *AuthService) Logout(sessionID uuid.UUID) error {
	return s.sessionRepo.Revoke(sessionID)
}

// LogoutAll revokes every session of the user
func (s *AuthService) LogoutAll(userID int32) error {
	return s.sessionRepo.RevokeAllForUser(userID)
}

// VerifyToken parses and validates a token-mode JWT, returning the user ID
func (s *AuthService) VerifyToken(tokenString string) (int32, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidCredentials
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, domain.ErrInvalidCredentials
	}
	return claims.UserID, nil
}

// VerifySession checks a session-mode credential and returns the user ID
func (s *AuthService) VerifySession(sessionID uuid.UUID) (int32, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return 0, err
	}
	if !session.Valid(time.Now().UTC()) {
		return 0, domain.ErrSessionExpired
	}
	return session.UserID, nil
}

func (s *AuthService) issueToken(userID int32, now time.Time) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
