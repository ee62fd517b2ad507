// Package ledger implements the per-person transaction ledger: forward
// actions, undo/redo and daily wage accrual. Every operation runs in one
// storage transaction so the cached balance always equals the replay of the
// person's active transactions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/mmynk/familywallet/internal/calculator"
	"github.com/mmynk/familywallet/internal/events"
	"github.com/mmynk/familywallet/internal/metrics"
	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/storage"
)

// MaxDescriptionLength bounds transaction descriptions, in bytes.
const MaxDescriptionLength = 255

// Engine applies ledger operations against a storage.Store.
type Engine struct {
	store     storage.Store
	publisher events.Publisher
	now       func() time.Time
	loc       *time.Location

	wages singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used for wage dates and event times.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the timezone that decides the calendar day for wages.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithPublisher sets where committed changes are announced.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// New creates an Engine. Without options it uses time.Now, UTC and no publisher.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		publisher: events.Nop{},
		now:       time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of a single ledger mutation.
type Result struct {
	PersonID    int64
	Transaction *models.Transaction
	Balance     decimal.Decimal
}

// Adjust appends an add or subtract transaction and moves the balance.
func (e *Engine) Adjust(ctx context.Context, ownerID, personID int64, kind models.TransactionType, amount decimal.Decimal, description string) (*Result, error) {
	if kind != models.TypeAdd && kind != models.TypeSubtract {
		return nil, fmt.Errorf("%w: adjustment type must be add or subtract, got %q", ErrInvalidInput, kind)
	}
	if err := ValidateAmount("amount", amount); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	entry := models.Adjustment{Kind: kind, Delta: amount}
	var res *Result
	err := e.store.InTx(ctx, func(ctx context.Context, l storage.Ledger) error {
		if _, err := l.GetPerson(ctx, ownerID, personID); err != nil {
			return err
		}

		t, err := e.appendForward(ctx, l, personID, entry, description)
		if err != nil {
			return err
		}

		balance, err := l.ApplyDelta(ctx, personID, entry.Signed())
		if err != nil {
			return err
		}

		res = &Result{PersonID: personID, Transaction: t, Balance: balance}
		return nil
	})

	e.finish(ctx, string(kind), events.KindAdjusted, ownerID, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Clear sets the balance to zero, remembering the previous balance so that
// undo can restore it.
func (e *Engine) Clear(ctx context.Context, ownerID, personID int64, description string) (*Result, error) {
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	var res *Result
	err := e.store.InTx(ctx, func(ctx context.Context, l storage.Ledger) error {
		p, err := l.GetPerson(ctx, ownerID, personID)
		if err != nil {
			return err
		}

		entry := models.Clear{RestoreBalance: p.Balance}
		t, err := e.appendForward(ctx, l, personID, entry, description)
		if err != nil {
			return err
		}

		balance := calculator.Apply(entry, p.Balance)
		if err := l.SetBalance(ctx, personID, balance); err != nil {
			return err
		}

		res = &Result{PersonID: personID, Transaction: t, Balance: balance}
		return nil
	})

	e.finish(ctx, "clear", events.KindCleared, ownerID, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Undo deactivates the person's most recent active transaction and reverts
// its effect on the balance.
func (e *Engine) Undo(ctx context.Context, ownerID, personID int64) (*Result, error) {
	var res *Result
	err := e.store.InTx(ctx, func(ctx context.Context, l storage.Ledger) error {
		p, err := l.GetPerson(ctx, ownerID, personID)
		if err != nil {
			return err
		}

		target, err := l.MostRecentActive(ctx, personID)
		if errors.Is(err, storage.ErrNoTransaction) {
			return ErrNothingToUndo
		}
		if err != nil {
			return err
		}

		balance := calculator.Revert(target.Entry, p.Balance)
		if err := l.SetBalance(ctx, personID, balance); err != nil {
			return err
		}
		if err := l.SetActive(ctx, target.ID, false); err != nil {
			return err
		}
		target.Active = false

		res = &Result{PersonID: personID, Transaction: target, Balance: balance}
		return nil
	})

	e.finish(ctx, "undo", events.KindUndone, ownerID, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Redo reactivates the person's earliest undone transaction and re-applies it.
func (e *Engine) Redo(ctx context.Context, ownerID, personID int64) (*Result, error) {
	var res *Result
	err := e.store.InTx(ctx, func(ctx context.Context, l storage.Ledger) error {
		p, err := l.GetPerson(ctx, ownerID, personID)
		if err != nil {
			return err
		}

		target, err := l.EarliestInactive(ctx, personID)
		if errors.Is(err, storage.ErrNoTransaction) {
			return ErrNothingToRedo
		}
		if err != nil {
			return err
		}

		balance := calculator.Apply(target.Entry, p.Balance)
		if err := l.SetBalance(ctx, personID, balance); err != nil {
			return err
		}
		if err := l.SetActive(ctx, target.ID, true); err != nil {
			return err
		}
		target.Active = true

		res = &Result{PersonID: personID, Transaction: target, Balance: balance}
		return nil
	})

	e.finish(ctx, "redo", events.KindRedone, ownerID, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// History is a person's visible ledger.
type History struct {
	// Transactions are the active transactions, newest first.
	Transactions []*models.Transaction
	CanUndo      bool
	CanRedo      bool
}

// History returns the person's active transactions and undo/redo availability.
func (e *Engine) History(ctx context.Context, ownerID, personID int64) (*History, error) {
	if _, err := e.store.GetPerson(ctx, ownerID, personID); err != nil {
		return nil, err
	}

	txs, err := e.store.ListTransactions(ctx, personID, storage.ActiveOnly())
	if err != nil {
		return nil, err
	}

	canRedo := true
	if _, err := e.store.EarliestInactive(ctx, personID); errors.Is(err, storage.ErrNoTransaction) {
		canRedo = false
	} else if err != nil {
		return nil, err
	}

	return &History{
		Transactions: txs,
		CanUndo:      len(txs) > 0,
		CanRedo:      canRedo,
	}, nil
}

// AccountHistory is the merged ledger of every person of an account.
type AccountHistory struct {
	// Transactions are the active transactions, newest first.
	Transactions []*models.Transaction
	// HasUndone reports whether any person has something to redo.
	HasUndone bool
}

// AccountHistory lists the active transactions across the owner's persons.
func (e *Engine) AccountHistory(ctx context.Context, ownerID int64) (*AccountHistory, error) {
	txs, err := e.store.ListAccountTransactions(ctx, ownerID, storage.ActiveOnly())
	if err != nil {
		return nil, err
	}

	hasUndone, err := e.store.AccountHasInactive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &AccountHistory{Transactions: txs, HasUndone: hasUndone}, nil
}

// Consistency compares a cached balance with a replay of the ledger.
type Consistency struct {
	PersonID   int64
	Cached     decimal.Decimal
	Replayed   decimal.Decimal
	Consistent bool
}

// Verify replays the person's ledger and compares it with the cached balance.
func (e *Engine) Verify(ctx context.Context, ownerID, personID int64) (*Consistency, error) {
	var c *Consistency
	err := e.store.InTx(ctx, func(ctx context.Context, l storage.Ledger) error {
		p, err := l.GetPerson(ctx, ownerID, personID)
		if err != nil {
			return err
		}

		txs, err := l.ListTransactions(ctx, personID, storage.TransactionQuery{Ascending: true})
		if err != nil {
			return err
		}

		replayed := calculator.ReplayBalance(txs)
		c = &Consistency{
			PersonID:   personID,
			Cached:     p.Balance,
			Replayed:   replayed,
			Consistent: replayed.Equal(p.Balance),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !c.Consistent {
		slog.WarnContext(ctx, "Balance cache diverged from ledger",
			"person_id", personID,
			"cached", c.Cached,
			"replayed", c.Replayed,
		)
	}
	return c, nil
}

// appendForward discards the person's redo tail and appends a new active
// transaction.
func (e *Engine) appendForward(ctx context.Context, l storage.Ledger, personID int64, entry models.Entry, description string) (*models.Transaction, error) {
	purged, err := l.PurgeInactive(ctx, personID)
	if err != nil {
		return nil, err
	}
	if purged > 0 {
		slog.DebugContext(ctx, "Discarded redo history", "person_id", personID, "count", purged)
	}

	t := &models.Transaction{
		PersonID:    personID,
		Entry:       entry,
		Description: description,
	}
	if err := l.AppendTransaction(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// finish records metrics and, for committed changes, publishes an event.
func (e *Engine) finish(ctx context.Context, operation string, kind events.Kind, ownerID int64, res *Result, err error) {
	if err != nil {
		metrics.ObserveLedger(operation, outcome(err))
		return
	}
	metrics.ObserveLedger(operation, metrics.OutcomeOK)
	e.publish(ctx, kind, ownerID, res)
}

func (e *Engine) publish(ctx context.Context, kind events.Kind, ownerID int64, res *Result) {
	ev := events.Event{
		Kind:          kind,
		OwnerID:       ownerID,
		PersonID:      res.PersonID,
		TransactionID: res.Transaction.ID,
		Balance:       res.Balance,
		At:            e.now(),
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		metrics.EventPublishFailures.Inc()
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"kind", kind,
			"person_id", res.PersonID,
			"error", err,
		)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNothingToUndo),
		errors.Is(err, ErrNothingToRedo),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, storage.ErrNotFound):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

func validateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description longer than %d bytes", ErrInvalidInput, MaxDescriptionLength)
	}
	return nil
}
