// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familywallet/internal/models"
)

var (
	// ErrNotFound is returned for missing rows, including persons that exist
	// but belong to another account.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("already exists")

	// ErrNoTransaction is returned by the ledger boundary lookups when the
	// person has no transaction in the requested state.
	ErrNoTransaction = errors.New("no matching transaction")
)

// TransactionQuery selects and orders ledger rows.
type TransactionQuery struct {
	// Active filters by the active flag when non-nil.
	Active *bool

	// Ascending orders oldest first; the default is newest first.
	Ascending bool
}

// ActiveOnly is the query used for display: active rows, newest first.
func ActiveOnly() TransactionQuery {
	active := true
	return TransactionQuery{Active: &active}
}

// UserStore defines account persistence.
type UserStore interface {
	// CreateUser inserts the user and sets user.ID. Returns ErrConflict if the
	// username is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	// DeleteUser removes the account and, by cascade, its persons and their
	// transactions.
	DeleteUser(ctx context.Context, id int64) error
}

// PersonStore defines person persistence outside of the ledger.
type PersonStore interface {
	// CreatePerson inserts the person with a zero balance and sets person.ID.
	CreatePerson(ctx context.Context, person *models.Person) error
	UpdatePerson(ctx context.Context, ownerID, personID int64, update models.PersonUpdate) (*models.Person, error)
	// DeletePerson removes the person and, by cascade, its transactions.
	DeletePerson(ctx context.Context, ownerID, personID int64) error
}

// Ledger is the set of operations the ledger engine needs. Inside Store.InTx
// every call shares one database transaction.
type Ledger interface {
	// GetPerson returns the person if it exists and is owned by ownerID,
	// ErrNotFound otherwise.
	GetPerson(ctx context.Context, ownerID, personID int64) (*models.Person, error)
	// ListPersons returns the account's persons, oldest first.
	ListPersons(ctx context.Context, ownerID int64) ([]*models.Person, error)

	// AppendTransaction inserts t as active, stamping ID and CreatedAt.
	AppendTransaction(ctx context.Context, t *models.Transaction) error
	ListTransactions(ctx context.Context, personID int64, q TransactionQuery) ([]*models.Transaction, error)
	// ListAccountTransactions lists transactions across all persons of ownerID.
	ListAccountTransactions(ctx context.Context, ownerID int64, q TransactionQuery) ([]*models.Transaction, error)
	// MostRecentActive returns the undo target or ErrNoTransaction.
	MostRecentActive(ctx context.Context, personID int64) (*models.Transaction, error)
	// EarliestInactive returns the redo target or ErrNoTransaction.
	EarliestInactive(ctx context.Context, personID int64) (*models.Transaction, error)
	// AccountHasInactive reports whether any person of ownerID has an undone transaction.
	AccountHasInactive(ctx context.Context, ownerID int64) (bool, error)
	// SetActive flips the active flag. Setting the current value is a no-op.
	SetActive(ctx context.Context, txID int64, active bool) error
	// PurgeInactive deletes every undone transaction of the person and returns
	// how many were removed.
	PurgeInactive(ctx context.Context, personID int64) (int64, error)

	// ApplyDelta adds delta to the cached balance and returns the new balance.
	ApplyDelta(ctx context.Context, personID int64, delta decimal.Decimal) (decimal.Decimal, error)
	// SetBalance overwrites the cached balance.
	SetBalance(ctx context.Context, personID int64, balance decimal.Decimal) error
	SetLastWageDate(ctx context.Context, personID int64, date string) error
}

// Store defines the full storage backend. This abstraction allows swapping
// storage backends (SQLite, PostgreSQL, etc.) without changing the service layer.
type Store interface {
	UserStore
	PersonStore

	// Ledger methods on the Store itself run outside any transaction and are
	// meant for reads.
	Ledger

	// InTx runs fn in one database transaction that is serialized against
	// every other InTx. It commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, l Ledger) error) error

	// Close releases any resources held by the store.
	Close() error
}
