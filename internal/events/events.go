// Package events publishes committed ledger changes to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Kind names a ledger change.
type Kind string

const (
	KindAdjusted Kind = "adjusted"
	KindCleared  Kind = "cleared"
	KindUndone   Kind = "undone"
	KindRedone   Kind = "redone"
	KindWagePaid Kind = "wage_paid"
)

// Event describes one committed ledger change.
type Event struct {
	Kind          Kind            `json:"kind"`
	OwnerID       int64           `json:"ownerId"`
	PersonID      int64           `json:"personId"`
	TransactionID int64           `json:"transactionId"`
	Balance       decimal.Decimal `json:"balance"`
	At            time.Time       `json:"at"`
}

// ToJSON encodes the event as a message body.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes a message body.
func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher delivers events after the ledger change has committed. A failed
// publish never undoes the change.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Close() error { return nil }
