package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome       TransactionType = "income"
	TransactionTypeExpense      TransactionType = "expense"
	TransactionTypeTransfer     TransactionType = "transfer"
	TransactionTypeLent         TransactionType = "lent"
	TransactionTypeBorrowed     TransactionType = "borrowed"
	TransactionTypeRepaymentIn  TransactionType = "repayment_in"
	TransactionTypeRepaymentOut TransactionType = "repayment_out"
)

// TransactionTypes lists every valid type.
var TransactionTypes = []TransactionType{
	TransactionTypeIncome,
	TransactionTypeExpense,
	TransactionTypeTransfer,
	TransactionTypeLent,
	TransactionTypeBorrowed,
	TransactionTypeRepaymentIn,
	TransactionTypeRepaymentOut,
}

// Valid reports whether t is one of the seven known types.
func (t TransactionType) Valid() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsDebt reports whether the type settles against a contact.
func (t TransactionType) IsDebt() bool {
	switch t {
	case TransactionTypeLent, TransactionTypeBorrowed, TransactionTypeRepaymentIn, TransactionTypeRepaymentOut:
		return true
	}
	return false
}

// NeedsCategory reports whether the type requires a category reference.
func (t TransactionType) NeedsCategory() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type Transaction struct {
	ID              int32           `json:"id"`
	UserID          int32           `json:"userId"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	AccountID       int32           `json:"accountId"`
	ToAccountID     *int32          `json:"toAccountId,omitempty"`
	CategoryID      *int32          `json:"categoryId,omitempty"`
	ContactID       *int32          `json:"contactId,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	Title           *string         `json:"title,omitempty"`
	Description     *string         `json:"description,omitempty"`
	ReferenceNumber *string         `json:"referenceNumber,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`

	// Relation names, loaded on read.
	AccountName   *string `json:"accountName,omitempty"`
	ToAccountName *string `json:"toAccountName,omitempty"`
	CategoryName  *string `json:"categoryName,omitempty"`
	ContactName   *string `json:"contactName,omitempty"`
}

// UpdateTransactionData carries the replacement field values for an update.
// The writer reverses the stored row before these are persisted.
type UpdateTransactionData struct {
	Type            TransactionType
	Amount          decimal.Decimal
	AccountID       int32
	ToAccountID     *int32
	CategoryID      *int32
	ContactID       *int32
	TransactionDate time.Time
	Title           *string
	Description     *string
	ReferenceNumber *string
}

type TransactionFilters struct {
	Type       *TransactionType
	AccountID  *int32
	CategoryID *int32
	ContactID  *int32
	StartDate  *time.Time
	EndDate    *time.Time
	Period     *ReportPeriod
	Search     string
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// CategorySpending is one row of the spending-by-category rollup.
type CategorySpending struct {
	CategoryID *int32          `json:"categoryId,omitempty"`
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}

// TransactionRepository is the atomic ledger writer plus the read-side
// queries that share its type taxonomy. Create, Update and SoftDelete each
// run as a single database transaction that keeps account and contact
// balances consistent with the stored rows; they fail wholly or succeed
// wholly.
type TransactionRepository interface {
	Create(scope Scope, transaction *Transaction) (*Transaction, error)
	GetByID(scope Scope, id int32) (*Transaction, error)
	List(scope Scope, filters *TransactionFilters) (*PaginatedTransactions, error)
	Update(scope Scope, id int32, data *UpdateTransactionData) (*Transaction, error)
	SoftDelete(scope Scope, id int32) error

	CountByAccount(scope Scope, accountID int32) (int64, error)
	CountByCategory(scope Scope, categoryID int32) (int64, error)
	SumByTypeAndDateRange(scope Scope, txType TransactionType, start, end time.Time) (decimal.Decimal, error)
	SumExpensesByCategories(scope Scope, categoryIDs []int32, start, end time.Time) (decimal.Decimal, error)
	SpendingByCategory(scope Scope, start, end time.Time) ([]*CategorySpending, error)
}
