package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "daily"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether p is a known period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetPeriodDaily, BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}

type Budget struct {
	ID                   int32           `json:"id"`
	UserID               int32           `json:"userId"`
	CategoryID           int32           `json:"categoryId"`
	Amount               decimal.Decimal `json:"amount"`
	Period               BudgetPeriod    `json:"period"`
	StartDate            time.Time       `json:"startDate"`
	EndDate              *time.Time      `json:"endDate,omitempty"`
	IncludeSubcategories bool            `json:"includeSubcategories"`
	IsActive             bool            `json:"isActive"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	DeletedAt            *time.Time      `json:"deletedAt,omitempty"`

	CategoryName *string `json:"categoryName,omitempty"`
}

// Window returns the date range spent-amount is computed over: start_date to
// end_date, or to now for open-ended budgets.
func (b *Budget) Window(now time.Time) (time.Time, time.Time) {
	end := now
	if b.EndDate != nil {
		end = *b.EndDate
	}
	return b.StartDate, end
}

// BudgetUsage is the derived read-side view of a budget.
type BudgetUsage struct {
	Budget          *Budget         `json:"budget"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	PercentageUsed  decimal.Decimal `json:"percentageUsed"`
	OverBudget      bool            `json:"isOverBudget"`
}

type BudgetFilters struct {
	ActiveOnly  bool
	CurrentOnly bool
}

type BudgetRepository interface {
	Create(scope Scope, budget *Budget) (*Budget, error)
	GetByID(scope Scope, id int32) (*Budget, error)
	List(scope Scope, filters *BudgetFilters) ([]*Budget, error)
	Update(scope Scope, budget *Budget) (*Budget, error)
	SoftDelete(scope Scope, id int32) error
}
