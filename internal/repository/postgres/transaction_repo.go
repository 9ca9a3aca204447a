package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/ledger"
)

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL. Create, Update and SoftDelete run inside a database
// transaction: the row mutation and every balance increment commit together
// or not at all.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const maxWriteAttempts = 3

const transactionColumns = `t.id, t.user_id, t.type, t.amount, t.account_id,
	t.to_account_id, t.category_id, t.contact_id, t.transaction_date,
	t.title, t.description, t.reference_number,
	t.created_at, t.updated_at, t.deleted_at`

const transactionNameColumns = transactionColumns + `,
	a.name, ta.name, c.name, ct.name`

const transactionJoins = `FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	LEFT JOIN accounts ta ON ta.id = t.to_account_id
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN contacts ct ON ct.id = t.contact_id`

// Create inserts a transaction and applies its balance effects atomically
func (r *TransactionRepository) Create(scope domain.Scope, transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	var id int32
	err := r.withRetry(ctx, func(tx pgx.Tx) error {
		amount, err := decimalToPgNumeric(transaction.Amount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}

		userID := transaction.UserID
		if !scope.Unrestricted() {
			userID = scope.UserID()
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO transactions (user_id, type, amount, account_id, to_account_id,
				category_id, contact_id, transaction_date, title, description, reference_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`,
			userID, string(transaction.Type), amount, transaction.AccountID,
			int4OrNil(transaction.ToAccountID), int4OrNil(transaction.CategoryID),
			int4OrNil(transaction.ContactID), transaction.TransactionDate,
			textOrNil(transaction.Title), textOrNil(transaction.Description),
			textOrNil(transaction.ReferenceNumber),
		).Scan(&id)
		if err != nil {
			return err
		}

		stored := *transaction
		stored.ID = id
		stored.UserID = userID
		return r.applyEffects(ctx, tx, scope, ledger.Apply(&stored))
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(scope, id)
}

// GetByID retrieves a transaction with its relation names
func (r *TransactionRepository) GetByID(scope domain.Scope, id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionNameColumns+`
		`+transactionJoins+`
		WHERE ($1::boolean OR t.user_id = $2) AND t.id = $3 AND t.deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	transaction, err := scanTransactionWithNames(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// List retrieves a page of transactions with relation names, newest first
func (r *TransactionRepository) List(scope domain.Scope, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	where := ` WHERE ($1::boolean OR t.user_id = $2) AND t.deleted_at IS NULL`
	args := []any{scope.Unrestricted(), scope.UserID()}

	if filters.Type != nil {
		args = append(args, string(*filters.Type))
		where += fmt.Sprintf(" AND t.type = $%d", len(args))
	}
	if filters.AccountID != nil {
		args = append(args, *filters.AccountID)
		where += fmt.Sprintf(" AND (t.account_id = $%d OR t.to_account_id = $%d)", len(args), len(args))
	}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += fmt.Sprintf(" AND t.category_id = $%d", len(args))
	}
	if filters.ContactID != nil {
		args = append(args, *filters.ContactID)
		where += fmt.Sprintf(" AND t.contact_id = $%d", len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		where += fmt.Sprintf(" AND t.transaction_date >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		where += fmt.Sprintf(" AND t.transaction_date <= $%d", len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += fmt.Sprintf(" AND (t.title ILIKE $%d OR t.description ILIKE $%d OR t.reference_number ILIKE $%d)",
			len(args), len(args), len(args))
	}

	var totalItems int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&totalItems); err != nil {
		return nil, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := `SELECT ` + transactionNameColumns + `
		` + transactionJoins + where + `
		ORDER BY t.transaction_date DESC, t.id DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransactionWithNames(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32((totalItems + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// Update replaces a transaction's fields and rebalances atomically: the
// stored row's effects are reversed using the stored values, the new values
// are persisted, and the effects of the persisted row are applied.
func (r *TransactionRepository) Update(scope domain.Scope, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	ctx := context.Background()

	err := r.withRetry(ctx, func(tx pgx.Tx) error {
		stored, err := r.lockRow(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		if err := r.applyEffects(ctx, tx, scope, ledger.Reverse(stored)); err != nil {
			return err
		}

		amount, err := decimalToPgNumeric(data.Amount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE transactions
			SET type = $2, amount = $3, account_id = $4, to_account_id = $5,
				category_id = $6, contact_id = $7, transaction_date = $8,
				title = $9, description = $10, reference_number = $11,
				updated_at = now()
			WHERE id = $1`,
			id, string(data.Type), amount, data.AccountID,
			int4OrNil(data.ToAccountID), int4OrNil(data.CategoryID),
			int4OrNil(data.ContactID), data.TransactionDate,
			textOrNil(data.Title), textOrNil(data.Description),
			textOrNil(data.ReferenceNumber),
		)
		if err != nil {
			return err
		}

		// Reapply from the persisted row rather than the request payload so
		// the balances always mirror what the table actually holds.
		persisted, err := r.lockRow(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		return r.applyEffects(ctx, tx, scope, ledger.Apply(persisted))
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(scope, id)
}

// SoftDelete reverses a transaction's balance effects and marks it deleted
func (r *TransactionRepository) SoftDelete(scope domain.Scope, id int32) error {
	ctx := context.Background()

	return r.withRetry(ctx, func(tx pgx.Tx) error {
		stored, err := r.lockRow(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		if err := r.applyEffects(ctx, tx, scope, ledger.Reverse(stored)); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE transactions
			SET deleted_at = now(), updated_at = now()
			WHERE id = $1`,
			id,
		)
		return err
	})
}

// CountByAccount counts live transactions referencing an account as source
// or destination
func (r *TransactionRepository) CountByAccount(scope domain.Scope, accountID int32) (int64, error) {
	ctx := context.Background()
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE `+scopeFilter+` AND (account_id = $3 OR to_account_id = $3) AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), accountID,
	).Scan(&count)
	return count, err
}

// CountByCategory counts live transactions referencing a category
func (r *TransactionRepository) CountByCategory(scope domain.Scope, categoryID int32) (int64, error) {
	ctx := context.Background()
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE `+scopeFilter+` AND category_id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), categoryID,
	).Scan(&count)
	return count, err
}

// SumByTypeAndDateRange totals live transactions of one type over a closed
// date range
func (r *TransactionRepository) SumByTypeAndDateRange(scope domain.Scope, txType domain.TransactionType, start, end time.Time) (decimal.Decimal, error) {
	ctx := context.Background()
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE `+scopeFilter+` AND type = $3
			AND transaction_date BETWEEN $4 AND $5
			AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), string(txType), start, end,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// SumExpensesByCategories totals live expense transactions across a set of
// categories over a closed date range
func (r *TransactionRepository) SumExpensesByCategories(scope domain.Scope, categoryIDs []int32, start, end time.Time) (decimal.Decimal, error) {
	if len(categoryIDs) == 0 {
		return decimal.Zero, nil
	}
	ctx := context.Background()
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE `+scopeFilter+` AND type = 'expense'
			AND category_id = ANY($3)
			AND transaction_date BETWEEN $4 AND $5
			AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), categoryIDs, start, end,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// SpendingByCategory groups live expense totals by category over a closed
// date range, largest first. Uncategorized expenses form their own bucket.
func (r *TransactionRepository) SpendingByCategory(scope domain.Scope, start, end time.Time) ([]*domain.CategorySpending, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT t.category_id, COALESCE(c.name, 'Uncategorized'), SUM(t.amount), COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE ($1::boolean OR t.user_id = $2) AND t.type = 'expense'
			AND t.transaction_date BETWEEN $3 AND $4
			AND t.deleted_at IS NULL
		GROUP BY t.category_id, c.name
		ORDER BY SUM(t.amount) DESC`,
		scope.Unrestricted(), scope.UserID(), start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spending []*domain.CategorySpending
	for rows.Next() {
		var s domain.CategorySpending
		var categoryID pgtype.Int4
		var total pgtype.Numeric
		if err := rows.Scan(&categoryID, &s.Category, &total, &s.Count); err != nil {
			return nil, err
		}
		s.CategoryID = int4Ptr(categoryID)
		s.Total = pgNumericToDecimal(total)
		spending = append(spending, &s)
	}
	return spending, rows.Err()
}

// withRetry runs fn inside a transaction, retrying a bounded number of times
// when the database reports a serialization failure or deadlock
func (r *TransactionRepository) withRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		err = r.inTx(ctx, fn)
		if !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
}

func (r *TransactionRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// serialization_failure and deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// lockRow reads a live transaction row under FOR UPDATE so concurrent
// writers against the same row serialize
func (r *TransactionRepository) lockRow(ctx context.Context, tx pgx.Tx, scope domain.Scope, id int32) (*domain.Transaction, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		WHERE ($1::boolean OR t.user_id = $2) AND t.id = $3 AND t.deleted_at IS NULL
		FOR UPDATE OF t`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// applyEffects adds each signed delta to its account or contact balance with
// a single-statement increment
func (r *TransactionRepository) applyEffects(ctx context.Context, tx pgx.Tx, scope domain.Scope, effects []ledger.Effect) error {
	for _, effect := range effects {
		delta, err := decimalToPgNumeric(effect.Delta)
		if err != nil {
			return fmt.Errorf("invalid delta: %w", err)
		}

		var table string
		var notFound error
		switch effect.Kind {
		case ledger.KindAccount:
			table, notFound = "accounts", domain.ErrAccountNotFound
		case ledger.KindContact:
			table, notFound = "contacts", domain.ErrContactNotFound
		default:
			return fmt.Errorf("unknown effect kind %q", effect.Kind)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE `+table+`
			SET balance = balance + $4, updated_at = now()
			WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
			scope.Unrestricted(), scope.UserID(), effect.ID, delta,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return notFound
		}
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var txType string
	var amount pgtype.Numeric
	var toAccountID, categoryID, contactID pgtype.Int4
	var title, description, referenceNumber pgtype.Text
	var deletedAt pgtype.Timestamptz
	err := row.Scan(
		&t.ID, &t.UserID, &txType, &amount, &t.AccountID,
		&toAccountID, &categoryID, &contactID, &t.TransactionDate,
		&title, &description, &referenceNumber,
		&t.CreatedAt, &t.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Type = domain.TransactionType(txType)
	t.Amount = pgNumericToDecimal(amount)
	t.ToAccountID = int4Ptr(toAccountID)
	t.CategoryID = int4Ptr(categoryID)
	t.ContactID = int4Ptr(contactID)
	t.Title = textPtr(title)
	t.Description = textPtr(description)
	t.ReferenceNumber = textPtr(referenceNumber)
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return &t, nil
}

func scanTransactionWithNames(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var txType string
	var amount pgtype.Numeric
	var toAccountID, categoryID, contactID pgtype.Int4
	var title, description, referenceNumber pgtype.Text
	var deletedAt pgtype.Timestamptz
	var accountName string
	var toAccountName, categoryName, contactName pgtype.Text
	err := row.Scan(
		&t.ID, &t.UserID, &txType, &amount, &t.AccountID,
		&toAccountID, &categoryID, &contactID, &t.TransactionDate,
		&title, &description, &referenceNumber,
		&t.CreatedAt, &t.UpdatedAt, &deletedAt,
		&accountName, &toAccountName, &categoryName, &contactName,
	)
	if err != nil {
		return nil, err
	}
	t.Type = domain.TransactionType(txType)
	t.Amount = pgNumericToDecimal(amount)
	t.ToAccountID = int4Ptr(toAccountID)
	t.CategoryID = int4Ptr(categoryID)
	t.ContactID = int4Ptr(contactID)
	t.Title = textPtr(title)
	t.Description = textPtr(description)
	t.ReferenceNumber = textPtr(referenceNumber)
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	t.AccountName = &accountName
	t.ToAccountName = textPtr(toAccountName)
	t.CategoryName = textPtr(categoryName)
	t.ContactName = textPtr(contactName)
	return &t, nil
}
