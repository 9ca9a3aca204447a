package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// SessionRepository implements domain.SessionRepository using PostgreSQL
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session row
func (r *SessionRepository) Create(session *domain.Session) (*domain.Session, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, expires_at, revoked, created_at`,
		session.ID, session.UserID, session.ExpiresAt,
	)
	return scanSession(row)
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(id uuid.UUID) (*domain.Session, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, expires_at, revoked, created_at
		FROM sessions
		WHERE id = $1`,
		id,
	)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Revoke marks a single session as revoked
func (r *SessionRepository) Revoke(id uuid.UUID) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET revoked = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// RevokeAllForUser marks every session of a user as revoked
func (r *SessionRepository) RevokeAllForUser(userID int32) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		UPDATE sessions SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`,
		userID,
	)
	return err
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.Revoked, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
