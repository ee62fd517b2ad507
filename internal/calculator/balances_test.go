package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familywallet/internal/models"
)

func adj(id int64, kind models.TransactionType, amount string, active bool) *models.Transaction {
	return &models.Transaction{
		ID:        id,
		CreatedAt: 1000,
		Entry:     models.Adjustment{Kind: kind, Delta: decimal.RequireFromString(amount)},
		Active:    active,
	}
}

func clr(id int64, restore string, active bool) *models.Transaction {
	return &models.Transaction{
		ID:        id,
		CreatedAt: 1000,
		Entry:     models.Clear{RestoreBalance: decimal.RequireFromString(restore)},
		Active:    active,
	}
}

func TestReplayBalance(t *testing.T) {
	tests := []struct {
		name     string
		txs      []*models.Transaction
		expected string
	}{
		{
			name:     "empty history",
			txs:      nil,
			expected: "0",
		},
		{
			name: "add and subtract",
			txs: []*models.Transaction{
				adj(1, models.TypeAdd, "50", true),
				adj(2, models.TypeSubtract, "20", true),
			},
			expected: "30",
		},
		{
			name: "daily wage credits",
			txs: []*models.Transaction{
				adj(1, models.TypeDailyWage, "150", true),
			},
			expected: "150",
		},
		{
			name: "clear resets then later adds count",
			txs: []*models.Transaction{
				adj(1, models.TypeAdd, "57", true),
				clr(2, "57", true),
				adj(3, models.TypeAdd, "5", true),
			},
			expected: "5",
		},
		{
			name: "undone transactions are skipped",
			txs: []*models.Transaction{
				adj(1, models.TypeAdd, "57", true),
				clr(2, "57", false),
			},
			expected: "57",
		},
		{
			name: "input order does not matter",
			txs: []*models.Transaction{
				adj(3, models.TypeAdd, "5", true),
				clr(2, "57", true),
				adj(1, models.TypeAdd, "57", true),
			},
			expected: "5",
		},
		{
			name: "subtract may go negative",
			txs: []*models.Transaction{
				adj(1, models.TypeSubtract, "12.34", true),
			},
			expected: "-12.34",
		},
		{
			name: "decimal amounts are exact",
			txs: []*models.Transaction{
				adj(1, models.TypeAdd, "0.1", true),
				adj(2, models.TypeAdd, "0.2", true),
			},
			expected: "0.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReplayBalance(tt.txs)
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("ReplayBalance() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestReplayBalance_OrdersByCreatedAt(t *testing.T) {
	early := adj(2, models.TypeAdd, "10", true)
	early.CreatedAt = 1
	late := clr(1, "0", true)
	late.CreatedAt = 2

	got := ReplayBalance([]*models.Transaction{late, early})
	if !got.IsZero() {
		t.Errorf("ReplayBalance() = %s, want 0 (clear is newer)", got)
	}
}

func TestApplyRevert(t *testing.T) {
	entries := []models.Entry{
		models.Adjustment{Kind: models.TypeAdd, Delta: decimal.NewFromInt(7)},
		models.Adjustment{Kind: models.TypeSubtract, Delta: decimal.NewFromInt(7)},
		models.Adjustment{Kind: models.TypeDailyWage, Delta: decimal.NewFromInt(7)},
		models.Clear{RestoreBalance: decimal.NewFromInt(42)},
	}
	start := decimal.NewFromInt(42)

	for _, e := range entries {
		t.Run(string(e.Type()), func(t *testing.T) {
			after := Apply(e, start)
			if back := Revert(e, after); !back.Equal(start) {
				t.Errorf("Revert(Apply(%v)) = %s, want %s", e.Type(), back, start)
			}
		})
	}
}

func TestAccountTotal(t *testing.T) {
	persons := []*models.Person{
		{Balance: decimal.RequireFromString("10.5")},
		{Balance: decimal.RequireFromString("-3")},
		{Balance: decimal.Zero},
	}
	if got := AccountTotal(persons); !got.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("AccountTotal() = %s, want 7.5", got)
	}
	if got := AccountTotal(nil); !got.IsZero() {
		t.Errorf("AccountTotal(nil) = %s, want 0", got)
	}
}
