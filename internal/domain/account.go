package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string
type AccountSubtype string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
)

const (
	SubtypeCash          AccountSubtype = "cash"
	SubtypeBankAccount   AccountSubtype = "bank_account"
	SubtypeDigitalWallet AccountSubtype = "digital_wallet"
	SubtypeCreditCard    AccountSubtype = "credit_card"
	SubtypeLoan          AccountSubtype = "loan"
)

// SubtypeToType maps account subtypes to their balance-sheet side.
var SubtypeToType = map[AccountSubtype]AccountType{
	SubtypeCash:          AccountTypeAsset,
	SubtypeBankAccount:   AccountTypeAsset,
	SubtypeDigitalWallet: AccountTypeAsset,
	SubtypeCreditCard:    AccountTypeLiability,
	SubtypeLoan:          AccountTypeLiability,
}

// Account balance is maintained by the transaction writer: it always equals
// the sum of the signed deltas of every non-deleted transaction touching the
// account as source or destination.
type Account struct {
	ID             int32            `json:"id"`
	UserID         int32            `json:"userId"`
	Name           string           `json:"name"`
	Type           AccountType      `json:"type"`
	Subtype        AccountSubtype   `json:"subtype"`
	Balance        decimal.Decimal  `json:"balance"`
	CreditLimit    *decimal.Decimal `json:"creditLimit,omitempty"`
	AccountNumber  *string          `json:"accountNumber,omitempty"`
	BankName       *string          `json:"bankName,omitempty"`
	Color          *string          `json:"color,omitempty"`
	Icon           *string          `json:"icon,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	IsActive       bool             `json:"isActive"`
	IncludeInTotal bool             `json:"includeInTotal"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	DeletedAt      *time.Time       `json:"deletedAt,omitempty"`
}

// AvailableCredit returns credit_limit minus the magnitude of the balance,
// zero when no limit is set.
func (a *Account) AvailableCredit() decimal.Decimal {
	if a.CreditLimit == nil {
		return decimal.Zero
	}
	return a.CreditLimit.Sub(a.Balance.Abs())
}

// AccountFilters narrows account listings.
type AccountFilters struct {
	Type       *AccountType
	Subtype    *AccountSubtype
	ActiveOnly bool
}

// AccountSummary is the read-side net-worth rollup over active,
// total-included accounts.
type AccountSummary struct {
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`
	AccountsCount    int64           `json:"accountsCount"`
	ActiveCount      int64           `json:"activeAccountsCount"`
}

type AccountRepository interface {
	Create(scope Scope, account *Account) (*Account, error)
	GetByID(scope Scope, id int32) (*Account, error)
	List(scope Scope, filters *AccountFilters) ([]*Account, error)
	Update(scope Scope, account *Account) (*Account, error)
	SoftDelete(scope Scope, id int32) error
	Summary(scope Scope) (*AccountSummary, error)
}
