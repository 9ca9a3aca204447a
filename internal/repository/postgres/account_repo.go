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

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, user_id, name, type, subtype, balance, credit_limit,
	account_number, bank_name, color, icon, notes, is_active, include_in_total,
	created_at, updated_at, deleted_at`

// Create inserts a new account
func (r *AccountRepository) Create(scope domain.Scope, account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()
	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}
	creditLimit, err := numericOrNil(account.CreditLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid credit limit: %w", err)
	}

	userID := account.UserID
	if !scope.Unrestricted() {
		userID = scope.UserID()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (user_id, name, type, subtype, balance, credit_limit,
			account_number, bank_name, color, icon, notes, include_in_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, '#3B82F6'), $10, $11, $12)
		RETURNING `+accountColumns,
		userID, account.Name, string(account.Type), string(account.Subtype),
		balance, creditLimit,
		textOrNil(account.AccountNumber), textOrNil(account.BankName),
		textOrNil(account.Color), textOrNil(account.Icon), textOrNil(account.Notes),
		account.IncludeInTotal,
	)
	return scanAccount(row)
}

// GetByID retrieves an account by ID within the scope
func (r *AccountRepository) GetByID(scope domain.Scope, id int32) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// List retrieves accounts within the scope, optionally filtered
func (r *AccountRepository) List(scope domain.Scope, filters *domain.AccountFilters) ([]*domain.Account, error) {
	ctx := context.Background()

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE ` + scopeFilter + ` AND deleted_at IS NULL`
	args := []any{scope.Unrestricted(), scope.UserID()}

	if filters != nil {
		if filters.Type != nil {
			args = append(args, string(*filters.Type))
			query += fmt.Sprintf(" AND type = $%d", len(args))
		}
		if filters.Subtype != nil {
			args = append(args, string(*filters.Subtype))
			query += fmt.Sprintf(" AND subtype = $%d", len(args))
		}
		if filters.ActiveOnly {
			query += " AND is_active"
		}
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update persists editable account fields. Balance is owned by the
// transaction writer and never touched here.
func (r *AccountRepository) Update(scope domain.Scope, account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()
	creditLimit, err := numericOrNil(account.CreditLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid credit limit: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET name = $4, type = $5, subtype = $6, credit_limit = $7,
			account_number = $8, bank_name = $9, color = COALESCE($10, color),
			icon = $11, notes = $12, is_active = $13, include_in_total = $14,
			updated_at = now()
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL
		RETURNING `+accountColumns,
		scope.Unrestricted(), scope.UserID(), account.ID,
		account.Name, string(account.Type), string(account.Subtype), creditLimit,
		textOrNil(account.AccountNumber), textOrNil(account.BankName),
		textOrNil(account.Color), textOrNil(account.Icon), textOrNil(account.Notes),
		account.IsActive, account.IncludeInTotal,
	)
	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks an account as deleted (sets deleted_at timestamp)
func (r *AccountRepository) SoftDelete(scope domain.Scope, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET deleted_at = now(), updated_at = now()
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Summary computes the net-worth rollup over active accounts flagged
// include_in_total. Sums are raw signed balances, not magnitudes.
func (r *AccountRepository) Summary(scope domain.Scope) (*domain.AccountSummary, error) {
	ctx := context.Background()
	var assets, liabilities pgtype.Numeric
	var total, active int64
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(balance) FILTER (WHERE type = 'asset' AND is_active AND include_in_total), 0),
			COALESCE(SUM(balance) FILTER (WHERE type = 'liability' AND is_active AND include_in_total), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active)
		FROM accounts
		WHERE `+scopeFilter+` AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(),
	).Scan(&assets, &liabilities, &total, &active)
	if err != nil {
		return nil, err
	}

	summary := &domain.AccountSummary{
		TotalAssets:      pgNumericToDecimal(assets),
		TotalLiabilities: pgNumericToDecimal(liabilities),
		AccountsCount:    total,
		ActiveCount:      active,
	}
	summary.NetWorth = summary.TotalAssets.Sub(summary.TotalLiabilities)
	return summary, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var accType, subtype string
	var balance, creditLimit pgtype.Numeric
	var accountNumber, bankName, color, icon, notes pgtype.Text
	var deletedAt pgtype.Timestamptz
	err := row.Scan(
		&a.ID, &a.UserID, &a.Name, &accType, &subtype, &balance, &creditLimit,
		&accountNumber, &bankName, &color, &icon, &notes,
		&a.IsActive, &a.IncludeInTotal, &a.CreatedAt, &a.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Type = domain.AccountType(accType)
	a.Subtype = domain.AccountSubtype(subtype)
	a.Balance = pgNumericToDecimal(balance)
	a.CreditLimit = numericPtr(creditLimit)
	a.AccountNumber = textPtr(accountNumber)
	a.BankName = textPtr(bankName)
	a.Color = textPtr(color)
	a.Icon = textPtr(icon)
	a.Notes = textPtr(notes)
	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}
	return &a, nil
}
