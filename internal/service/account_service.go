package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo     domain.AccountRepository
	transactionRepo domain.TransactionRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository, transactionRepo domain.TransactionRepository) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name           string
	Subtype        domain.AccountSubtype
	Balance        decimal.Decimal
	CreditLimit    *decimal.Decimal
	AccountNumber  *string
	BankName       *string
	Color          *string
	Icon           *string
	Notes          *string
	IncludeInTotal *bool
}

// CreateAccount creates a new account. The balance-sheet side is derived
// from the subtype, never taken from the caller.
func (s *AccountService) CreateAccount(scope domain.Scope, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	accountType, ok := domain.SubtypeToType[input.Subtype]
	if !ok {
		return nil, domain.ErrInvalidAccountSubtype
	}

	includeInTotal := true
	if input.IncludeInTotal != nil {
		includeInTotal = *input.IncludeInTotal
	}

	return s.accountRepo.Create(scope, &domain.Account{
		UserID:         scope.UserID(),
		Name:           name,
		Type:           accountType,
		Subtype:        input.Subtype,
		Balance:        input.Balance,
		CreditLimit:    input.CreditLimit,
		AccountNumber:  input.AccountNumber,
		BankName:       input.BankName,
		Color:          input.Color,
		Icon:           input.Icon,
		Notes:          input.Notes,
		IsActive:       true,
		IncludeInTotal: includeInTotal,
	})
}

// GetAccounts retrieves accounts with optional filters
func (s *AccountService) GetAccounts(scope domain.Scope, filters *domain.AccountFilters) ([]*domain.Account, error) {
	if filters != nil && filters.Type != nil &&
		*filters.Type != domain.AccountTypeAsset && *filters.Type != domain.AccountTypeLiability {
		return nil, domain.ErrInvalidAccountType
	}
	return s.accountRepo.List(scope, filters)
}

// GetAccountByID retrieves a single account
func (s *AccountService) GetAccountByID(scope domain.Scope, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(scope, id)
}

// UpdateAccountInput holds the input for updating an account
type UpdateAccountInput struct {
	Name           string
	Subtype        domain.AccountSubtype
	CreditLimit    *decimal.Decimal
	AccountNumber  *string
	BankName       *string
	Color          *string
	Icon           *string
	Notes          *string
	IsActive       *bool
	IncludeInTotal *bool
}

// UpdateAccount updates editable account fields. Balance cannot be set
// directly; it only moves through transactions.
func (s *AccountService) UpdateAccount(scope domain.Scope, id int32, input UpdateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	accountType, ok := domain.SubtypeToType[input.Subtype]
	if !ok {
		return nil, domain.ErrInvalidAccountSubtype
	}

	account, err := s.accountRepo.GetByID(scope, id)
	if err != nil {
		return nil, err
	}

	account.Name = name
	account.Type = accountType
	account.Subtype = input.Subtype
	account.CreditLimit = input.CreditLimit
	account.AccountNumber = input.AccountNumber
	account.BankName = input.BankName
	if input.Color != nil {
		account.Color = input.Color
	}
	account.Icon = input.Icon
	account.Notes = input.Notes
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}
	if input.IncludeInTotal != nil {
		account.IncludeInTotal = *input.IncludeInTotal
	}

	return s.accountRepo.Update(scope, account)
}

// DeleteAccount soft deletes an account. Accounts referenced by live
// transactions cannot be deleted.
func (s *AccountService) DeleteAccount(scope domain.Scope, id int32) error {
	if _, err := s.accountRepo.GetByID(scope, id); err != nil {
		return err
	}

	count, err := s.transactionRepo.CountByAccount(scope, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrAccountHasTransactions
	}

	return s.accountRepo.SoftDelete(scope, id)
}

// GetSummary computes the net-worth rollup
func (s *AccountService) GetSummary(scope domain.Scope) (*domain.AccountSummary, error) {
	return s.accountRepo.Summary(scope)
}
