package domain

import "time"

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category trees are one level deep: a category either has a nil parent or
// points at a top-level one.
type Category struct {
	ID          int32        `json:"id"`
	UserID      int32        `json:"userId"`
	ParentID    *int32       `json:"parentId,omitempty"`
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	Color       *string      `json:"color,omitempty"`
	Icon        *string      `json:"icon,omitempty"`
	Description *string      `json:"description,omitempty"`
	SortOrder   int32        `json:"order"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty"`
}

// IsParent reports whether the category is top-level.
func (c *Category) IsParent() bool {
	return c.ParentID == nil
}

// CategoryFilters narrows category listings.
type CategoryFilters struct {
	Type       *CategoryType
	ParentOnly bool
	ActiveOnly bool
}

type CategoryRepository interface {
	Create(scope Scope, category *Category) (*Category, error)
	GetByID(scope Scope, id int32) (*Category, error)
	List(scope Scope, filters *CategoryFilters) ([]*Category, error)
	Update(scope Scope, category *Category) (*Category, error)
	SoftDelete(scope Scope, id int32) error
	ChildIDs(scope Scope, id int32) ([]int32, error)
}
