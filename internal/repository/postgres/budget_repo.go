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

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `b.id, b.user_id, b.category_id, b.amount, b.period,
	b.start_date, b.end_date, b.include_subcategories, b.is_active,
	b.created_at, b.updated_at, b.deleted_at, c.name`

const budgetJoin = `FROM budgets b
	LEFT JOIN categories c ON c.id = b.category_id AND c.deleted_at IS NULL`

// Create inserts a new budget
func (r *BudgetRepository) Create(scope domain.Scope, budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	userID := budget.UserID
	if !scope.Unrestricted() {
		userID = scope.UserID()
	}

	var id int32
	err = r.pool.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, amount, period, start_date, end_date, include_subcategories)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		userID, budget.CategoryID, amount, string(budget.Period),
		budget.StartDate, budget.EndDate, budget.IncludeSubcategories,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(scope, id)
}

// GetByID retrieves a budget by ID within the scope
func (r *BudgetRepository) GetByID(scope domain.Scope, id int32) (*domain.Budget, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+budgetColumns+`
		`+budgetJoin+`
		WHERE ($1::boolean OR b.user_id = $2) AND b.id = $3 AND b.deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// List retrieves budgets within the scope, optionally filtered
func (r *BudgetRepository) List(scope domain.Scope, filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	ctx := context.Background()

	query := `
		SELECT ` + budgetColumns + `
		` + budgetJoin + `
		WHERE ($1::boolean OR b.user_id = $2) AND b.deleted_at IS NULL`
	if filters != nil {
		if filters.ActiveOnly {
			query += " AND b.is_active"
		}
		if filters.CurrentOnly {
			query += " AND b.start_date <= CURRENT_DATE AND (b.end_date IS NULL OR b.end_date >= CURRENT_DATE)"
		}
	}
	query += " ORDER BY b.start_date DESC, b.id DESC"

	rows, err := r.pool.Query(ctx, query, scope.Unrestricted(), scope.UserID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// Update persists editable budget fields
func (r *BudgetRepository) Update(scope domain.Scope, budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE budgets
		SET category_id = $4, amount = $5, period = $6, start_date = $7,
			end_date = $8, include_subcategories = $9, is_active = $10,
			updated_at = now()
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), budget.ID,
		budget.CategoryID, amount, string(budget.Period), budget.StartDate,
		budget.EndDate, budget.IncludeSubcategories, budget.IsActive,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrBudgetNotFound
	}
	return r.GetByID(scope, budget.ID)
}

// SoftDelete marks a budget as deleted (sets deleted_at timestamp)
func (r *BudgetRepository) SoftDelete(scope domain.Scope, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE budgets
		SET deleted_at = now(), updated_at = now()
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var period string
	var amount pgtype.Numeric
	var endDate pgtype.Date
	var deletedAt pgtype.Timestamptz
	var categoryName pgtype.Text
	err := row.Scan(
		&b.ID, &b.UserID, &b.CategoryID, &amount, &period,
		&b.StartDate, &endDate, &b.IncludeSubcategories, &b.IsActive,
		&b.CreatedAt, &b.UpdatedAt, &deletedAt, &categoryName,
	)
	if err != nil {
		return nil, err
	}
	b.Amount = pgNumericToDecimal(amount)
	b.Period = domain.BudgetPeriod(period)
	if endDate.Valid {
		b.EndDate = &endDate.Time
	}
	if deletedAt.Valid {
		b.DeletedAt = &deletedAt.Time
	}
	b.CategoryName = textPtr(categoryName)
	return &b, nil
}
