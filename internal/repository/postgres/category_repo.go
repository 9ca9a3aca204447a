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

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `id, user_id, parent_id, name, type, color, icon,
	description, sort_order, is_active, created_at, updated_at, deleted_at`

// Create inserts a new category
func (r *CategoryRepository) Create(scope domain.Scope, category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()

	userID := category.UserID
	if !scope.Unrestricted() {
		userID = scope.UserID()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, parent_id, name, type, color, icon, description, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		userID, int4OrNil(category.ParentID), category.Name, string(category.Type),
		textOrNil(category.Color), textOrNil(category.Icon),
		textOrNil(category.Description), category.SortOrder,
	)
	return scanCategory(row)
}

// GetByID retrieves a category by ID within the scope
func (r *CategoryRepository) GetByID(scope domain.Scope, id int32) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// List retrieves categories within the scope, optionally filtered
func (r *CategoryRepository) List(scope domain.Scope, filters *domain.CategoryFilters) ([]*domain.Category, error) {
	ctx := context.Background()

	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE ` + scopeFilter + ` AND deleted_at IS NULL`
	args := []any{scope.Unrestricted(), scope.UserID()}

	if filters != nil {
		if filters.Type != nil {
			args = append(args, string(*filters.Type))
			query += fmt.Sprintf(" AND type = $%d", len(args))
		}
		if filters.ParentOnly {
			query += " AND parent_id IS NULL"
		}
		if filters.ActiveOnly {
			query += " AND is_active"
		}
	}
	query += " ORDER BY sort_order, name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Update persists editable category fields
func (r *CategoryRepository) Update(scope domain.Scope, category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE categories
		SET parent_id = $4, name = $5, type = $6, color = $7, icon = $8,
			description = $9, sort_order = $10, is_active = $11, updated_at = now()
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL
		RETURNING `+categoryColumns,
		scope.Unrestricted(), scope.UserID(), category.ID,
		int4OrNil(category.ParentID), category.Name, string(category.Type),
		textOrNil(category.Color), textOrNil(category.Icon),
		textOrNil(category.Description), category.SortOrder, category.IsActive,
	)
	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks a category as deleted (sets deleted_at timestamp)
func (r *CategoryRepository) SoftDelete(scope domain.Scope, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories
		SET deleted_at = now(), updated_at = now()
		WHERE `+scopeFilter+` AND id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// ChildIDs returns the IDs of the direct children of a category
func (r *CategoryRepository) ChildIDs(scope domain.Scope, id int32) ([]int32, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM categories
		WHERE `+scopeFilter+` AND parent_id = $3 AND deleted_at IS NULL`,
		scope.Unrestricted(), scope.UserID(), id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var childID int32
		if err := rows.Scan(&childID); err != nil {
			return nil, err
		}
		ids = append(ids, childID)
	}
	return ids, rows.Err()
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	var parentID pgtype.Int4
	var catType string
	var color, icon, description pgtype.Text
	var deletedAt pgtype.Timestamptz
	err := row.Scan(
		&c.ID, &c.UserID, &parentID, &c.Name, &catType, &color, &icon,
		&description, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ParentID = int4Ptr(parentID)
	c.Type = domain.CategoryType(catType)
	c.Color = textPtr(color)
	c.Icon = textPtr(icon)
	c.Description = textPtr(description)
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return &c, nil
}
