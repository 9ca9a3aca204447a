package service

import (
	"strings"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository, transactionRepo domain.TransactionRepository) *CategoryService {
	return &CategoryService{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// CategoryInput holds the input for creating or updating a category
type CategoryInput struct {
	Name        string
	Type        domain.CategoryType
	ParentID    *int32
	Color       *string
	Icon        *string
	Description *string
	SortOrder   int32
	IsActive    *bool
}

// CreateCategory creates a new category. Trees are one level deep: the
// parent, when given, must itself be top-level and of the same type.
func (s *CategoryService) CreateCategory(scope domain.Scope, input CategoryInput) (*domain.Category, error) {
	checked, err := s.validate(scope, input)
	if err != nil {
		return nil, err
	}

	isActive := true
	if checked.IsActive != nil {
		isActive = *checked.IsActive
	}

	return s.categoryRepo.Create(scope, &domain.Category{
		UserID:      scope.UserID(),
		ParentID:    checked.ParentID,
		Name:        checked.Name,
		Type:        checked.Type,
		Color:       checked.Color,
		Icon:        checked.Icon,
		Description: checked.Description,
		SortOrder:   checked.SortOrder,
		IsActive:    isActive,
	})
}

// GetCategories retrieves categories with optional filters
func (s *CategoryService) GetCategories(scope domain.Scope, filters *domain.CategoryFilters) ([]*domain.Category, error) {
	return s.categoryRepo.List(scope, filters)
}

// GetCategoryByID retrieves a single category
func (s *CategoryService) GetCategoryByID(scope domain.Scope, id int32) (*domain.Category, error) {
	return s.categoryRepo.GetByID(scope, id)
}

// UpdateCategory updates editable category fields
func (s *CategoryService) UpdateCategory(scope domain.Scope, id int32, input CategoryInput) (*domain.Category, error) {
	checked, err := s.validate(scope, input)
	if err != nil {
		return nil, err
	}
	if checked.ParentID != nil && *checked.ParentID == id {
		return nil, domain.ErrParentNotTopLevel
	}

	category, err := s.categoryRepo.GetByID(scope, id)
	if err != nil {
		return nil, err
	}

	category.ParentID = checked.ParentID
	category.Name = checked.Name
	category.Type = checked.Type
	category.Color = checked.Color
	category.Icon = checked.Icon
	category.Description = checked.Description
	category.SortOrder = checked.SortOrder
	if checked.IsActive != nil {
		category.IsActive = *checked.IsActive
	}

	return s.categoryRepo.Update(scope, category)
}

// DeleteCategory soft deletes a category. Categories referenced by live
// transactions or with subcategories cannot be deleted.
func (s *CategoryService) DeleteCategory(scope domain.Scope, id int32) error {
	if _, err := s.categoryRepo.GetByID(scope, id); err != nil {
		return err
	}

	count, err := s.transactionRepo.CountByCategory(scope, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrCategoryHasTransactions
	}

	children, err := s.categoryRepo.ChildIDs(scope, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return domain.ErrCategoryHasChildren
	}

	return s.categoryRepo.SoftDelete(scope, id)
}

func (s *CategoryService) validate(scope domain.Scope, input CategoryInput) (*CategoryInput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	input.Name = name

	if input.Type != domain.CategoryTypeIncome && input.Type != domain.CategoryTypeExpense {
		return nil, domain.ErrInvalidCategoryType
	}

	if input.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(scope, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsParent() {
			return nil, domain.ErrParentNotTopLevel
		}
		if parent.Type != input.Type {
			return nil, domain.ErrInvalidCategoryType
		}
	}

	return &input, nil
}
