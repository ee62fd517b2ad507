// Package calculator derives balances from ledger history.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familywallet/internal/models"
)

// ReplayBalance computes a person's balance from scratch.
//
// Algorithm:
//  1. Order transactions by creation (CreatedAt, then ID).
//  2. Starting from zero, apply each active transaction:
//     add and daily_wage credit their amount, subtract debits it,
//     clear resets the balance to zero.
//  3. Undone transactions are skipped.
//
// The input slice is not modified.
func ReplayBalance(txs []*models.Transaction) decimal.Decimal {
	ordered := make([]*models.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt != ordered[j].CreatedAt {
			return ordered[i].CreatedAt < ordered[j].CreatedAt
		}
		return ordered[i].ID < ordered[j].ID
	})

	balance := decimal.Zero
	for _, t := range ordered {
		if !t.Active {
			continue
		}
		balance = Apply(t.Entry, balance)
	}
	return balance
}

// Apply returns the balance after entry takes effect.
func Apply(entry models.Entry, balance decimal.Decimal) decimal.Decimal {
	switch e := entry.(type) {
	case models.Adjustment:
		return balance.Add(e.Signed())
	case models.Clear:
		return decimal.Zero
	default:
		return balance
	}
}

// Revert returns the balance before entry took effect, given the balance after.
func Revert(entry models.Entry, balance decimal.Decimal) decimal.Decimal {
	switch e := entry.(type) {
	case models.Adjustment:
		return balance.Sub(e.Signed())
	case models.Clear:
		return e.RestoreBalance
	default:
		return balance
	}
}

// AccountTotal sums the cached balances of an account's persons.
func AccountTotal(persons []*models.Person) decimal.Decimal {
	total := decimal.Zero
	for _, p := range persons {
		total = total.Add(p.Balance)
	}
	return total
}
