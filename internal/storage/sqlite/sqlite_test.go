package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStore, username string) *models.User {
	t.Helper()
	user := models.NewUser(username, "hash", false)
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func createPerson(t *testing.T, store *SQLiteStore, ownerID int64, name string) *models.Person {
	t.Helper()
	p := &models.Person{OwnerID: ownerID, Name: name, DailyWage: decimal.NewFromInt(100)}
	require.NoError(t, store.CreatePerson(context.Background(), p))
	return p
}

func appendTx(t *testing.T, store *SQLiteStore, personID int64, entry models.Entry) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{PersonID: personID, Entry: entry, Description: string(entry.Type())}
	require.NoError(t, store.AppendTransaction(context.Background(), tx))
	return tx
}

func add(n int64) models.Entry {
	return models.Adjustment{Kind: models.TypeAdd, Delta: decimal.NewFromInt(n)}
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser assigns ID", func(t *testing.T) {
		user := createUser(t, store, "alice")
		assert.NotZero(t, user.ID)

		got, err := store.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.False(t, got.IsAdmin)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice", "other", false))
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		_, err := store.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetUserByID(ctx, 9999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("admin flag and password updates", func(t *testing.T) {
		user := createUser(t, store, "bob")
		require.NoError(t, store.SetAdmin(ctx, user.ID, true))
		require.NoError(t, store.UpdatePasswordHash(ctx, user.ID, "new-hash"))

		got, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin)
		assert.Equal(t, "new-hash", got.PasswordHash)

		assert.ErrorIs(t, store.SetAdmin(ctx, 9999, true), storage.ErrNotFound)
	})

	t.Run("ListUsers returns all accounts", func(t *testing.T) {
		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestSQLiteStore_Persons(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner")
	other := createUser(t, store, "other")

	t.Run("CreatePerson starts at zero", func(t *testing.T) {
		p := createPerson(t, store, owner.ID, "Kid")
		got, err := store.GetPerson(ctx, owner.ID, p.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.IsZero())
		assert.True(t, got.DailyWage.Equal(decimal.NewFromInt(100)))
		assert.Empty(t, got.LastWageDate)
	})

	t.Run("foreign person is not found", func(t *testing.T) {
		p := createPerson(t, store, owner.ID, "Private")
		_, err := store.GetPerson(ctx, other.ID, p.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.UpdatePerson(ctx, other.ID, p.ID, models.PersonUpdate{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeletePerson(ctx, other.ID, p.ID), storage.ErrNotFound)
	})

	t.Run("UpdatePerson changes only given fields", func(t *testing.T) {
		p := createPerson(t, store, owner.ID, "Before")
		name := "After"
		got, err := store.UpdatePerson(ctx, owner.ID, p.ID, models.PersonUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.True(t, got.DailyWage.Equal(decimal.NewFromInt(100)))

		wage := decimal.RequireFromString("12.5")
		got, err = store.UpdatePerson(ctx, owner.ID, p.ID, models.PersonUpdate{DailyWage: &wage})
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.True(t, got.DailyWage.Equal(wage))
	})

	t.Run("ListPersons is scoped to the owner", func(t *testing.T) {
		createPerson(t, store, other.ID, "Theirs")
		persons, err := store.ListPersons(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, persons, 1)
		assert.Equal(t, "Theirs", persons[0].Name)
	})

	t.Run("balance and wage date round-trip exactly", func(t *testing.T) {
		p := createPerson(t, store, owner.ID, "Exact")
		require.NoError(t, store.SetBalance(ctx, p.ID, decimal.RequireFromString("0.1")))
		bal, err := store.ApplyDelta(ctx, p.ID, decimal.RequireFromString("0.2"))
		require.NoError(t, err)
		assert.Equal(t, "0.3", bal.String())

		require.NoError(t, store.SetLastWageDate(ctx, p.ID, "2024-05-01"))
		got, err := store.GetPerson(ctx, owner.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "0.3", got.Balance.String())
		assert.Equal(t, "2024-05-01", got.LastWageDate)
	})
}

func TestSQLiteStore_Ledger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner")
	p := createPerson(t, store, owner.ID, "Kid")

	first := appendTx(t, store, p.ID, add(10))
	second := appendTx(t, store, p.ID, models.Adjustment{Kind: models.TypeSubtract, Delta: decimal.NewFromInt(3)})
	third := appendTx(t, store, p.ID, models.Clear{RestoreBalance: decimal.NewFromInt(7)})

	t.Run("append stamps monotonic order", func(t *testing.T) {
		assert.True(t, first.Active)
		assert.LessOrEqual(t, first.CreatedAt, second.CreatedAt)
		assert.LessOrEqual(t, second.CreatedAt, third.CreatedAt)
		assert.Less(t, first.ID, second.ID)
	})

	t.Run("entries decode to their variants", func(t *testing.T) {
		txs, err := store.ListTransactions(ctx, p.ID, storage.TransactionQuery{Ascending: true})
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, models.TypeAdd, txs[0].Type())
		assert.Equal(t, models.TypeSubtract, txs[1].Type())
		clear, ok := txs[2].Entry.(models.Clear)
		require.True(t, ok)
		assert.True(t, clear.RestoreBalance.Equal(decimal.NewFromInt(7)))
	})

	t.Run("boundaries follow undo and redo order", func(t *testing.T) {
		got, err := store.MostRecentActive(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, third.ID, got.ID)

		_, err = store.EarliestInactive(ctx, p.ID)
		assert.ErrorIs(t, err, storage.ErrNoTransaction)

		require.NoError(t, store.SetActive(ctx, third.ID, false))
		require.NoError(t, store.SetActive(ctx, third.ID, false), "SetActive must be idempotent")
		require.NoError(t, store.SetActive(ctx, second.ID, false))

		got, err = store.MostRecentActive(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		got, err = store.EarliestInactive(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)

		has, err := store.AccountHasInactive(ctx, owner.ID)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("active listing is newest first", func(t *testing.T) {
		txs, err := store.ListTransactions(ctx, p.ID, storage.ActiveOnly())
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, first.ID, txs[0].ID)

		all, err := store.ListAccountTransactions(ctx, owner.ID, storage.TransactionQuery{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, third.ID, all[0].ID)
	})

	t.Run("PurgeInactive removes the redo tail", func(t *testing.T) {
		n, err := store.PurgeInactive(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = store.EarliestInactive(ctx, p.ID)
		assert.ErrorIs(t, err, storage.ErrNoTransaction)
	})

	t.Run("SetActive on missing transaction", func(t *testing.T) {
		assert.ErrorIs(t, store.SetActive(ctx, 9999, true), storage.ErrNotFound)
	})
}

func TestSQLiteStore_InTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner")
	p := createPerson(t, store, owner.ID, "Kid")

	err := store.InTx(ctx, func(ctx context.Context, l storage.Ledger) error {
		tx := &models.Transaction{PersonID: p.ID, Entry: add(5)}
		if err := l.AppendTransaction(ctx, tx); err != nil {
			return err
		}
		if _, err := l.ApplyDelta(ctx, p.ID, decimal.NewFromInt(5)); err != nil {
			return err
		}
		// Fails after both halves were written.
		return l.SetActive(ctx, 9999, true)
	})
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err := store.GetPerson(ctx, owner.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero(), "balance must roll back")

	txs, err := store.ListTransactions(ctx, p.ID, storage.TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, txs, "ledger append must roll back")
}

func TestSQLiteStore_CascadeDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner")
	p := createPerson(t, store, owner.ID, "Kid")
	appendTx(t, store, p.ID, add(1))

	require.NoError(t, store.DeleteUser(ctx, owner.ID))

	persons, err := store.ListPersons(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, persons)

	txs, err := store.ListTransactions(ctx, p.ID, storage.TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	store, err := New(path)
	require.NoError(t, err)
	user := models.NewUser("persist", "hash", false)
	require.NoError(t, store.CreateUser(context.Background(), user))
	require.NoError(t, store.Close())

	store, err = New(path)
	require.NoError(t, err, "migrations must be idempotent on reopen")
	defer store.Close()

	got, err := store.GetUserByUsername(context.Background(), "persist")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}
