package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/familywallet/internal/events"
	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/storage"
	"github.com/mmynk/familywallet/internal/storage/sqlite"
)

func TestCheckWages_FirstRunStartsClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", report.Today)
	assert.Empty(t, report.Payments)

	p, err := f.store.GetPerson(ctx, f.ownerID, f.personID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", p.LastWageDate)
	f.requireConsistent(t, "0")
}

func TestCheckWages_PaysGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)

	f.clock.Advance(3 * 24 * time.Hour)
	report, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, report.Payments, 1)

	payment := report.Payments[0]
	assert.Equal(t, f.personID, payment.PersonID)
	assert.Equal(t, 3, payment.Days)
	assert.Equal(t, "150", payment.Amount.String())

	last, err := f.store.MostRecentActive(ctx, f.personID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeDailyWage, last.Type())
	assert.Contains(t, last.Description, "3 days")
	assert.Equal(t, "Daily wage (3 days x 50)", last.Description)

	p, err := f.store.GetPerson(ctx, f.ownerID, f.personID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-04", p.LastWageDate)
	f.requireConsistent(t, "150")

	got := f.events.Events()
	require.Len(t, got, 1)
	assert.Equal(t, events.KindWagePaid, got[0].Kind)
}

func TestCheckWages_SameDayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	first, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, first.Payments, 1)

	f.clock.Advance(2 * time.Hour)
	second, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Empty(t, second.Payments)
	f.requireConsistent(t, "50")
}

func TestCheckWages_UsesConfiguredTimezone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 15:59 UTC is still May 1st in UTC+8's evening; 16:00 UTC is May 2nd.
	f.clock.now = time.Date(2024, 5, 1, 15, 59, 0, 0, time.UTC)
	_, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	report, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", report.Today)
	require.Len(t, report.Payments, 1)
	assert.Equal(t, 1, report.Payments[0].Days)
}

func TestCheckWages_SkipsZeroWage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unpaid := &models.Person{OwnerID: f.ownerID, Name: "Adult", DailyWage: decimal.Zero}
	require.NoError(t, f.store.CreatePerson(ctx, unpaid))

	_, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	f.clock.Advance(48 * time.Hour)
	report, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)

	require.Len(t, report.Payments, 1)
	assert.Equal(t, f.personID, report.Payments[0].PersonID)

	p, err := f.store.GetPerson(ctx, f.ownerID, unpaid.ID)
	require.NoError(t, err)
	assert.Empty(t, p.LastWageDate, "zero-wage persons are not touched")
}

func TestCheckWages_DiscardsRedoAndUndoes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	_, err = f.engine.Adjust(ctx, f.ownerID, f.personID, models.TypeAdd, dec("7"), "")
	require.NoError(t, err)
	_, err = f.engine.Undo(ctx, f.ownerID, f.personID)
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)

	_, err = f.engine.Redo(ctx, f.ownerID, f.personID)
	assert.ErrorIs(t, err, ErrNothingToRedo, "a wage payment is a new action")

	res, err := f.engine.Undo(ctx, f.ownerID, f.personID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeDailyWage, res.Transaction.Type())
	f.requireConsistent(t, "0")

	// Undoing the payment does not re-open the day.
	report, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Empty(t, report.Payments)
}

func TestCheckWages_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	errs := make(chan error, 8)
	for range 8 {
		go func() {
			_, err := f.engine.CheckWages(ctx, f.ownerID)
			errs <- err
		}()
	}
	for range 8 {
		require.NoError(t, <-errs)
	}

	f.requireConsistent(t, "50")
}

func TestCheckWages_OutlivesCanceledCaller(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CheckWages(context.Background(), f.ownerID)
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, report.Payments, 1)
	f.requireConsistent(t, "50")
}

// failingStore fails SetLastWageDate for one person inside transactions.
type failingStore struct {
	*sqlite.SQLiteStore
	personID int64
}

func (s *failingStore) InTx(ctx context.Context, fn func(ctx context.Context, l storage.Ledger) error) error {
	return s.SQLiteStore.InTx(ctx, func(ctx context.Context, l storage.Ledger) error {
		return fn(ctx, &failingLedger{Ledger: l, personID: s.personID})
	})
}

type failingLedger struct {
	storage.Ledger
	personID int64
}

func (l *failingLedger) SetLastWageDate(ctx context.Context, personID int64, date string) error {
	if personID == l.personID {
		return errors.New("disk full")
	}
	return l.Ledger.SetLastWageDate(ctx, personID, date)
}

func TestCheckWages_ReportsPaymentsBeforeFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sibling := &models.Person{OwnerID: f.ownerID, Name: "Sibling", DailyWage: decimal.NewFromInt(50)}
	require.NoError(t, f.store.CreatePerson(ctx, sibling))

	_, err := f.engine.CheckWages(ctx, f.ownerID)
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	engine := New(&failingStore{SQLiteStore: f.store, personID: sibling.ID},
		WithClock(f.clock.Now),
		WithLocation(time.FixedZone("UTC+8", 8*60*60)),
	)
	report, err := engine.CheckWages(ctx, f.ownerID)
	require.Error(t, err)
	require.NotNil(t, report)
	require.Len(t, report.Payments, 1)
	assert.Equal(t, f.personID, report.Payments[0].PersonID)
	f.requireConsistent(t, "50")

	p, err := f.store.GetPerson(ctx, f.ownerID, sibling.ID)
	require.NoError(t, err)
	assert.True(t, p.Balance.IsZero(), "the failed payment rolled back")
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		expected int
	}{
		{"same day", "2024-05-01", "2024-05-01", 0},
		{"next day", "2024-05-01", "2024-05-02", 1},
		{"across month", "2024-04-29", "2024-05-02", 3},
		{"leap day", "2024-02-28", "2024-03-01", 2},
		{"clock moved back", "2024-05-02", "2024-05-01", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysBetween(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := DaysBetween("yesterday", "2024-05-01")
	assert.Error(t, err)
}
