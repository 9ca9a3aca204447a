package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// BudgetInput holds the input for creating or updating a budget
type BudgetInput struct {
	CategoryID           int32
	Amount               decimal.Decimal
	Period               domain.BudgetPeriod
	StartDate            time.Time
	EndDate              *time.Time
	IncludeSubcategories bool
	IsActive             *bool
}

// CreateBudget creates a new budget against an expense category
func (s *BudgetService) CreateBudget(scope domain.Scope, input BudgetInput) (*domain.Budget, error) {
	if err := s.validate(scope, input); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	return s.budgetRepo.Create(scope, &domain.Budget{
		UserID:               scope.UserID(),
		CategoryID:           input.CategoryID,
		Amount:               input.Amount,
		Period:               input.Period,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		IncludeSubcategories: input.IncludeSubcategories,
		IsActive:             isActive,
	})
}

// GetBudgets retrieves budgets with their usage computed
func (s *BudgetService) GetBudgets(scope domain.Scope, filters *domain.BudgetFilters) ([]*domain.BudgetUsage, error) {
	budgets, err := s.budgetRepo.List(scope, filters)
	if err != nil {
		return nil, err
	}

	usages := make([]*domain.BudgetUsage, len(budgets))
	for i, budget := range budgets {
		usage, err := s.usage(scope, budget)
		if err != nil {
			return nil, err
		}
		usages[i] = usage
	}
	return usages, nil
}

// GetBudgetByID retrieves a single budget with its usage computed
func (s *BudgetService) GetBudgetByID(scope domain.Scope, id int32) (*domain.BudgetUsage, error) {
	budget, err := s.budgetRepo.GetByID(scope, id)
	if err != nil {
		return nil, err
	}
	return s.usage(scope, budget)
}

// UpdateBudget updates editable budget fields
func (s *BudgetService) UpdateBudget(scope domain.Scope, id int32, input BudgetInput) (*domain.BudgetUsage, error) {
	if err := s.validate(scope, input); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByID(scope, id)
	if err != nil {
		return nil, err
	}

	budget.CategoryID = input.CategoryID
	budget.Amount = input.Amount
	budget.Period = input.Period
	budget.StartDate = input.StartDate
	budget.EndDate = input.EndDate
	budget.IncludeSubcategories = input.IncludeSubcategories
	if input.IsActive != nil {
		budget.IsActive = *input.IsActive
	}

	updated, err := s.budgetRepo.Update(scope, budget)
	if err != nil {
		return nil, err
	}
	return s.usage(scope, updated)
}

// DeleteBudget soft deletes a budget
func (s *BudgetService) DeleteBudget(scope domain.Scope, id int32) error {
	if _, err := s.budgetRepo.GetByID(scope, id); err != nil {
		return err
	}
	return s.budgetRepo.SoftDelete(scope, id)
}

// usage sums expense transactions over the budget window: the budgeted
// category alone, or together with its direct children when the budget
// includes subcategories
func (s *BudgetService) usage(scope domain.Scope, budget *domain.Budget) (*domain.BudgetUsage, error) {
	categoryIDs := []int32{budget.CategoryID}
	if budget.IncludeSubcategories {
		children, err := s.categoryRepo.ChildIDs(scope, budget.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryIDs = append(categoryIDs, children...)
	}

	start, end := budget.Window(time.Now().UTC())
	spent, err := s.transactionRepo.SumExpensesByCategories(scope, categoryIDs, start, end)
	if err != nil {
		return nil, err
	}

	usage := &domain.BudgetUsage{
		Budget:          budget,
		SpentAmount:     spent,
		RemainingAmount: budget.Amount.Sub(spent),
		OverBudget:      spent.GreaterThan(budget.Amount),
	}
	if budget.Amount.IsPositive() {
		usage.PercentageUsed = spent.Div(budget.Amount).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return usage, nil
}

func (s *BudgetService) validate(scope domain.Scope, input BudgetInput) error {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if !input.Period.Valid() {
		return domain.ErrInvalidBudgetPeriod
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return domain.ErrInvalidDateRange
	}
	if _, err := s.categoryRepo.GetByID(scope, input.CategoryID); err != nil {
		return err
	}
	return nil
}
