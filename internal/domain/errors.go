package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrContactNotFound     = errors.New("contact not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")

	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDeactivated    = errors.New("user account is deactivated")
	ErrInvalidAuthMode    = errors.New("invalid auth mode")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrSessionExpired     = errors.New("session expired or revoked")

	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidAccountSubtype  = errors.New("invalid account subtype")
	ErrInvalidCategoryType    = errors.New("invalid category type")
	ErrInvalidBudgetPeriod    = errors.New("invalid budget period")
	ErrInvalidReportPeriod    = errors.New("invalid report period")
	ErrInvalidDateRange       = errors.New("end date must be after start date")
	ErrSameAccountTransfer    = errors.New("source and destination accounts must be different")
	ErrDestinationRequired    = errors.New("destination account is required for transfers")
	ErrCategoryRequired       = errors.New("category is required for income and expense transactions")
	ErrContactRequired        = errors.New("contact is required for debt transactions")
	ErrParentNotTopLevel      = errors.New("parent category is itself a subcategory")

	ErrAccountHasTransactions  = errors.New("account has existing transactions")
	ErrCategoryHasTransactions = errors.New("category has existing transactions")
	ErrCategoryHasChildren     = errors.New("category has subcategories")
	ErrContactNotSettled       = errors.New("contact has an unsettled balance")

	// ErrConcurrentUpdate is returned after the writer exhausts its retry
	// budget on serialization failures.
	ErrConcurrentUpdate = errors.New("balance update lost a concurrent race")
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
	MaxReferenceLength   = 100
)
