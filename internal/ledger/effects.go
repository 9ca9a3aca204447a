// Package ledger computes the signed balance deltas a transaction applies to
// accounts and contacts. Computing an effect list is pure; persisting it is
// the repository's job.
package ledger

import (
	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// EntityKind identifies which table an effect mutates.
type EntityKind string

const (
	KindAccount EntityKind = "account"
	KindContact EntityKind = "contact"
)

// Effect is one signed balance delta against one entity row.
type Effect struct {
	Kind  EntityKind
	ID    int32
	Delta decimal.Decimal
}

// Apply returns the effects of recording t, per the sign table:
//
//	income        account +amount
//	expense       account -amount
//	transfer      source  -amount, destination +amount
//	lent          account -amount, contact     +amount
//	borrowed      account +amount, contact     -amount
//	repayment_in  account +amount, contact     -amount
//	repayment_out account -amount, contact     +amount
//
// The transaction's stored field values are used as-is; callers undoing a
// persisted row must pass that row, not the request that replaces it.
func Apply(t *domain.Transaction) []Effect {
	amount := t.Amount

	switch t.Type {
	case domain.TransactionTypeIncome:
		return []Effect{account(t.AccountID, amount)}

	case domain.TransactionTypeExpense:
		return []Effect{account(t.AccountID, amount.Neg())}

	case domain.TransactionTypeTransfer:
		if t.ToAccountID == nil {
			return nil
		}
		return []Effect{
			account(t.AccountID, amount.Neg()),
			account(*t.ToAccountID, amount),
		}

	case domain.TransactionTypeLent:
		if t.ContactID == nil {
			return nil
		}
		return []Effect{
			account(t.AccountID, amount.Neg()),
			contact(*t.ContactID, amount),
		}

	case domain.TransactionTypeBorrowed:
		if t.ContactID == nil {
			return nil
		}
		return []Effect{
			account(t.AccountID, amount),
			contact(*t.ContactID, amount.Neg()),
		}

	case domain.TransactionTypeRepaymentIn:
		if t.ContactID == nil {
			return nil
		}
		return []Effect{
			account(t.AccountID, amount),
			contact(*t.ContactID, amount.Neg()),
		}

	case domain.TransactionTypeRepaymentOut:
		if t.ContactID == nil {
			return nil
		}
		return []Effect{
			account(t.AccountID, amount.Neg()),
			contact(*t.ContactID, amount),
		}
	}

	return nil
}

// Reverse returns the exact negation of Apply(t), used by update and delete
// to undo a previously persisted row.
func Reverse(t *domain.Transaction) []Effect {
	effects := Apply(t)
	reversed := make([]Effect, len(effects))
	for i, e := range effects {
		reversed[i] = Effect{Kind: e.Kind, ID: e.ID, Delta: e.Delta.Neg()}
	}
	return reversed
}

func account(id int32, delta decimal.Decimal) Effect {
	return Effect{Kind: KindAccount, ID: id, Delta: delta}
}

func contact(id int32, delta decimal.Decimal) Effect {
	return Effect{Kind: KindContact, ID: id, Delta: delta}
}
