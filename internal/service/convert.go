package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familywallet/internal/ledger"
	"github.com/mmynk/familywallet/internal/models"
)

func toUser(u *models.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func toPerson(p *models.Person) Person {
	return Person{
		ID:           p.ID,
		Name:         p.Name,
		DailyWage:    p.DailyWage.String(),
		Balance:      p.Balance.String(),
		LastWageDate: p.LastWageDate,
		CreatedAt:    p.CreatedAt,
	}
}

func toTransaction(t *models.Transaction) Transaction {
	return Transaction{
		ID:          t.ID,
		PersonID:    t.PersonID,
		Type:        string(t.Type()),
		Amount:      t.Entry.Amount().String(),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		Active:      t.Active,
	}
}

func toTransactions(txs []*models.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransaction(t))
	}
	return out
}

func toLedgerResponse(res *ledger.Result) *LedgerResponse {
	return &LedgerResponse{
		PersonID:    res.PersonID,
		Transaction: toTransaction(res.Transaction),
		Balance:     res.Balance.String(),
	}
}

// parseAmount parses a non-negative decimal amount within ledger bounds.
func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", ledger.ErrInvalidInput, field, s)
	}
	if err := ledger.ValidateAmount(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func requireID(field string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s is required", ledger.ErrInvalidInput, field)
	}
	return nil
}
