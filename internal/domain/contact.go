package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceStatus classifies a contact's debt position.
type BalanceStatus string

const (
	BalanceStatusOwesYou BalanceStatus = "owes_you"
	BalanceStatusYouOwe  BalanceStatus = "you_owe"
	BalanceStatusSettled BalanceStatus = "settled"
)

// Contact balance is maintained by the transaction writer: positive means the
// contact owes the owner, negative means the owner owes the contact.
type Contact struct {
	ID        int32           `json:"id"`
	UserID    int32           `json:"userId"`
	Name      string          `json:"name"`
	Email     *string         `json:"email,omitempty"`
	Phone     *string         `json:"phone,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	Notes     *string         `json:"notes,omitempty"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *time.Time      `json:"deletedAt,omitempty"`
}

// Settled reports whether the debt position is zero.
func (c *Contact) Settled() bool {
	return c.Balance.IsZero()
}

// Status returns the contact's debt position.
func (c *Contact) Status() BalanceStatus {
	switch {
	case c.Balance.IsPositive():
		return BalanceStatusOwesYou
	case c.Balance.IsNegative():
		return BalanceStatusYouOwe
	default:
		return BalanceStatusSettled
	}
}

// ContactFilters narrows contact listings.
type ContactFilters struct {
	Status     *BalanceStatus
	ActiveOnly bool
	Search     string
}

// DebtSummary is the read-side rollup of all contact positions.
type DebtSummary struct {
	TotalOwedToYou decimal.Decimal `json:"totalOwedToYou"`
	TotalYouOwe    decimal.Decimal `json:"totalYouOwe"`
	NetPosition    decimal.Decimal `json:"netPosition"`
	ContactsCount  int64           `json:"contactsCount"`
	SettledCount   int64           `json:"settledCount"`
}

type ContactRepository interface {
	Create(scope Scope, contact *Contact) (*Contact, error)
	GetByID(scope Scope, id int32) (*Contact, error)
	List(scope Scope, filters *ContactFilters) ([]*Contact, error)
	Update(scope Scope, contact *Contact) (*Contact, error)
	SoftDelete(scope Scope, id int32) error
	Summary(scope Scope) (*DebtSummary, error)
}
