package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session backs the cookie authentication mode. Token-mode logins are
// stateless JWTs and never create a row here.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    int32     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Valid reports whether the session can still authenticate requests.
func (s *Session) Valid(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

type SessionRepository interface {
	Create(session *Session) (*Session, error)
	GetByID(id uuid.UUID) (*Session, error)
	Revoke(id uuid.UUID) error
	RevokeAllForUser(userID int32) error
}
