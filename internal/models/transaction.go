package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionType is the persisted kind of a transaction.
type TransactionType string

const (
	TypeAdd       TransactionType = "add"
	TypeSubtract  TransactionType = "subtract"
	TypeClear     TransactionType = "clear"
	TypeDailyWage TransactionType = "daily_wage"
)

// Entry is the typed payload of a transaction: either an Adjustment or a Clear.
type Entry interface {
	Type() TransactionType
	// Amount is the value persisted in the transaction's amount column.
	Amount() decimal.Decimal
}

// Adjustment moves a balance by Delta. Delta is a magnitude (>= 0); the
// direction comes from Kind, which is add, subtract or daily_wage.
type Adjustment struct {
	Kind  TransactionType
	Delta decimal.Decimal
}

func (a Adjustment) Type() TransactionType   { return a.Kind }
func (a Adjustment) Amount() decimal.Decimal { return a.Delta }

// Signed returns the delta with its direction applied.
func (a Adjustment) Signed() decimal.Decimal {
	if a.Kind == TypeSubtract {
		return a.Delta.Neg()
	}
	return a.Delta
}

// Clear sets a balance to zero. RestoreBalance is the balance right before the
// clear, which is what undoing it puts back.
type Clear struct {
	RestoreBalance decimal.Decimal
}

func (Clear) Type() TransactionType     { return TypeClear }
func (c Clear) Amount() decimal.Decimal { return c.RestoreBalance }

// DecodeEntry rebuilds the entry for a persisted (type, amount) pair.
func DecodeEntry(t TransactionType, amount decimal.Decimal) (Entry, error) {
	switch t {
	case TypeAdd, TypeSubtract, TypeDailyWage:
		return Adjustment{Kind: t, Delta: amount}, nil
	case TypeClear:
		return Clear{RestoreBalance: amount}, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %q", t)
	}
}

// Transaction is one entry of a person's ledger. Only Active ever changes
// after creation.
type Transaction struct {
	ID       int64
	PersonID int64
	Entry    Entry

	Description string

	// CreatedAt is the Unix time in milliseconds. Ties are broken by ID.
	CreatedAt int64

	// Active is false once the transaction has been undone.
	Active bool
}

// Type returns the transaction's entry type.
func (t *Transaction) Type() TransactionType {
	return t.Entry.Type()
}
