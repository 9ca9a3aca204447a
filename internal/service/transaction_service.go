package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
	categoryRepo    domain.CategoryRepository
	contactRepo     domain.ContactRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, accountRepo domain.AccountRepository, categoryRepo domain.CategoryRepository, contactRepo domain.ContactRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
		contactRepo:     contactRepo,
	}
}

// TransactionInput holds the input for creating or updating a transaction
type TransactionInput struct {
	Type            domain.TransactionType
	Amount          decimal.Decimal
	AccountID       int32
	ToAccountID     *int32
	CategoryID      *int32
	ContactID       *int32
	TransactionDate *time.Time
	Title           *string
	Description     *string
	ReferenceNumber *string
}

// CreateTransaction validates the input and records the transaction, which
// also moves the affected balances
func (s *TransactionService) CreateTransaction(scope domain.Scope, input TransactionInput) (*domain.Transaction, error) {
	checked, err := s.validate(scope, input)
	if err != nil {
		return nil, err
	}

	return s.transactionRepo.Create(scope, &domain.Transaction{
		UserID:          scope.UserID(),
		Type:            checked.Type,
		Amount:          checked.Amount,
		AccountID:       checked.AccountID,
		ToAccountID:     checked.ToAccountID,
		CategoryID:      checked.CategoryID,
		ContactID:       checked.ContactID,
		TransactionDate: *checked.TransactionDate,
		Title:           checked.Title,
		Description:     checked.Description,
		ReferenceNumber: checked.ReferenceNumber,
	})
}

// GetTransactions retrieves a page of transactions with optional filters
func (s *TransactionService) GetTransactions(scope domain.Scope, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters != nil && filters.Type != nil && !filters.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if filters != nil && filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}
	if filters != nil && filters.Period != nil {
		if !filters.Period.Valid() {
			return nil, domain.ErrInvalidReportPeriod
		}
		// Explicit dates win over the period shorthand
		start, end := periodRange(*filters.Period, time.Now().UTC())
		if filters.StartDate == nil {
			filters.StartDate = &start
		}
		if filters.EndDate == nil {
			filters.EndDate = &end
		}
	}
	return s.transactionRepo.List(scope, filters)
}

// GetTransactionByID retrieves a single transaction
func (s *TransactionService) GetTransactionByID(scope domain.Scope, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(scope, id)
}

// UpdateTransaction validates the input and replaces the transaction. The
// stored row's balance effects are undone and the new row's applied, so the
// result is indistinguishable from deleting and re-creating it.
func (s *TransactionService) UpdateTransaction(scope domain.Scope, id int32, input TransactionInput) (*domain.Transaction, error) {
	checked, err := s.validate(scope, input)
	if err != nil {
		return nil, err
	}

	return s.transactionRepo.Update(scope, id, &domain.UpdateTransactionData{
		Type:            checked.Type,
		Amount:          checked.Amount,
		AccountID:       checked.AccountID,
		ToAccountID:     checked.ToAccountID,
		CategoryID:      checked.CategoryID,
		ContactID:       checked.ContactID,
		TransactionDate: *checked.TransactionDate,
		Title:           checked.Title,
		Description:     checked.Description,
		ReferenceNumber: checked.ReferenceNumber,
	})
}

// DeleteTransaction soft deletes a transaction, undoing its balance effects
func (s *TransactionService) DeleteTransaction(scope domain.Scope, id int32) error {
	return s.transactionRepo.SoftDelete(scope, id)
}

// validate checks the shared create/update rules and returns the input with
// defaults filled and irrelevant references cleared
func (s *TransactionService) validate(scope domain.Scope, input TransactionInput) (*TransactionInput, error) {
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.accountRepo.GetByID(scope, input.AccountID); err != nil {
		return nil, err
	}

	switch {
	case input.Type == domain.TransactionTypeTransfer:
		if input.ToAccountID == nil {
			return nil, domain.ErrDestinationRequired
		}
		if *input.ToAccountID == input.AccountID {
			return nil, domain.ErrSameAccountTransfer
		}
		if _, err := s.accountRepo.GetByID(scope, *input.ToAccountID); err != nil {
			return nil, err
		}
		input.CategoryID = nil
		input.ContactID = nil

	case input.Type.NeedsCategory():
		if input.CategoryID == nil {
			return nil, domain.ErrCategoryRequired
		}
		category, err := s.categoryRepo.GetByID(scope, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if string(category.Type) != string(input.Type) {
			return nil, domain.ErrInvalidCategoryType
		}
		input.ToAccountID = nil
		input.ContactID = nil

	case input.Type.IsDebt():
		if input.ContactID == nil {
			return nil, domain.ErrContactRequired
		}
		if _, err := s.contactRepo.GetByID(scope, *input.ContactID); err != nil {
			return nil, err
		}
		input.ToAccountID = nil
		input.CategoryID = nil
	}

	if input.TransactionDate == nil {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		input.TransactionDate = &today
	}

	var err error
	if input.Title, err = trimmedOptional(input.Title, domain.MaxNameLength); err != nil {
		return nil, err
	}
	if input.Description, err = trimmedOptional(input.Description, domain.MaxDescriptionLength); err != nil {
		return nil, err
	}
	if input.ReferenceNumber, err = trimmedOptional(input.ReferenceNumber, domain.MaxReferenceLength); err != nil {
		return nil, err
	}

	return &input, nil
}

// trimmedOptional trims an optional field, dropping it when empty and
// rejecting it when over limit
func trimmedOptional(s *string, limit int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > limit {
		return nil, domain.ErrNameTooLong
	}
	return &trimmed, nil
}
