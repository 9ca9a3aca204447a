package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// ContactRepository implements domain.ContactRepository using PostgreSQL
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

const contactColumns = `id, user_id, name, email, phone, balance, notes,
	is_active, created_at, updated_at, deleted_at`

// Create inserts a new contact
func (r *ContactRepository) Create(scope domain.Scope, contact *domain.Contact) (*domain.Contact, error) {
	ctx := context.Background()

	userID := contact.UserID
	if !scope.Unrestricted() {
		userID = scope.UserID()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (user_id, name, email, phone, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns,
		userID, contact.Name, textOrNil(contact.Email), textOrNil(contact.Phone),
		textOrNil(contact.Notes),
	)
	return scanContact(row)
}

// GetByID retrieves a contact by ID within the scope
func (r *ContactRepository) GetByID(scope domain.Scope, id int32) (*domain.Contact, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

// List retrieves contacts within the scope, optionally filtered
func (r *ContactRepository) List(scope domain.Scope, filters *domain.ContactFilters) ([]*domain.Contact, error) {
	ctx := context.Background()

	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE ` + scopeFilter + ` AND deleted_at IS NULL`
	args := []any{scope.Unrestricted(), scope.UserID()}

	if filters != nil {
		if filters.Status != nil {
			switch *filters.Status {
			case domain.BalanceStatusOwesYou:
				query += " AND balance > 0"
			case domain.BalanceStatusYouOwe:
				query += " AND balance < 0"
			case domain.BalanceStatusSettled:
				query += " AND balance = 0"
			}
		}
		if filters.ActiveOnly {
			query += " AND is_active"
		}
		if filters.Search != "" {
			args = append(args, "%"+filters.Search+"%")
			query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
		}
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// Update persists editable contact fields. Balance is owned by the
// transaction writer and never touched here.
func (r *ContactRepository) Update(scope domain.Scope, contact *domain.Contact) (*domain.Contact, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE contacts
		SET name = $4, email = $5, phone = $6, notes = $7, is_active = $8,
			updated_at = now()
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL
		RETURNING `+contactColumns,
		scope.Unrestricted(), scope.UserID(), contact.ID,
		contact.Name, textOrNil(contact.Email), textOrNil(contact.Phone),
		textOrNil(contact.Notes), contact.IsActive,
	)
	updated, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks a contact as deleted (sets deleted_at timestamp)
func (r *ContactRepository) SoftDelete(scope domain.Scope, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts
		SET deleted_at = now(), updated_at = now()
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// Summary computes the debt rollup over non-deleted contacts
func (r *ContactRepository) Summary(scope domain.Scope) (*domain.DebtSummary, error) {
	ctx := context.Background()
	var owedToYou, youOwe pgtype.Numeric
	var total, settled int64
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(balance) FILTER (WHERE balance > 0), 0),
			COALESCE(SUM(-balance) FILTER (WHERE balance < 0), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE balance = 0)
		FROM contacts
		WHERE `+scopeFilter+` AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(),
	).Scan(&owedToYou, &youOwe, &total, &settled)
	if err != nil {
		return nil, err
	}

	summary := &domain.DebtSummary{
		TotalOwedToYou: pgNumericToDecimal(owedToYou),
		TotalYouOwe:    pgNumericToDecimal(youOwe),
		ContactsCount:  total,
		SettledCount:   settled,
	}
	summary.NetPosition = summary.TotalOwedToYou.Sub(summary.TotalYouOwe)
	return summary, nil
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	var email, phone, notes pgtype.Text
	var balance pgtype.Numeric
	var deletedAt pgtype.Timestamptz
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &email, &phone, &balance, &notes,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Email = textPtr(email)
	c.Phone = textPtr(phone)
	c.Balance = pgNumericToDecimal(balance)
	c.Notes = textPtr(notes)
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return &c, nil
}
