package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/storage"
)

// queries implements storage.Ledger over either the pool or a transaction.
type queries struct {
	q querier
}

var _ storage.Ledger = (*queries)(nil)

const transactionColumns = "t.id, t.person_id, t.type, t.amount, t.description, t.created_at, t.active"

// AppendTransaction inserts a new active transaction. CreatedAt never goes
// backwards for a person, even if the wall clock does.
func (q *queries) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	var last int64
	err := q.q.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(created_at), 0) FROM transactions WHERE person_id = ?",
		t.PersonID,
	).Scan(&last)
	if err != nil {
		return fmt.Errorf("failed to read last transaction time: %w", err)
	}

	t.CreatedAt = max(time.Now().UnixMilli(), last)
	t.Active = true

	res, err := q.q.ExecContext(ctx,
		"INSERT INTO transactions (person_id, type, amount, description, created_at, active) VALUES (?, ?, ?, ?, ?, ?)",
		t.PersonID, string(t.Entry.Type()), t.Entry.Amount(), t.Description, t.CreatedAt, true,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction id: %w", err)
	}
	t.ID = id

	return nil
}

// ListTransactions lists one person's transactions.
func (q *queries) ListTransactions(ctx context.Context, personID int64, tq storage.TransactionQuery) ([]*models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions t WHERE t.person_id = ?"
	return q.listTransactions(ctx, query, personID, tq)
}

// ListAccountTransactions lists transactions of every person owned by ownerID.
func (q *queries) ListAccountTransactions(ctx context.Context, ownerID int64, tq storage.TransactionQuery) ([]*models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions t JOIN persons p ON t.person_id = p.id WHERE p.owner_id = ?"
	return q.listTransactions(ctx, query, ownerID, tq)
}

func (q *queries) listTransactions(ctx context.Context, query string, id int64, tq storage.TransactionQuery) ([]*models.Transaction, error) {
	args := []any{id}
	if tq.Active != nil {
		query += " AND t.active = ?"
		args = append(args, *tq.Active)
	}
	if tq.Ascending {
		query += " ORDER BY t.created_at ASC, t.id ASC"
	} else {
		query += " ORDER BY t.created_at DESC, t.id DESC"
	}

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// MostRecentActive returns the newest active transaction of a person.
func (q *queries) MostRecentActive(ctx context.Context, personID int64) (*models.Transaction, error) {
	return q.boundary(ctx,
		"SELECT "+transactionColumns+" FROM transactions t WHERE t.person_id = ? AND t.active = 1 ORDER BY t.created_at DESC, t.id DESC LIMIT 1",
		personID,
	)
}

// EarliestInactive returns the oldest undone transaction of a person.
func (q *queries) EarliestInactive(ctx context.Context, personID int64) (*models.Transaction, error) {
	return q.boundary(ctx,
		"SELECT "+transactionColumns+" FROM transactions t WHERE t.person_id = ? AND t.active = 0 ORDER BY t.created_at ASC, t.id ASC LIMIT 1",
		personID,
	)
}

func (q *queries) boundary(ctx context.Context, query string, personID int64) (*models.Transaction, error) {
	t, err := scanTransaction(q.q.QueryRowContext(ctx, query, personID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNoTransaction
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get boundary transaction: %w", err)
	}
	return t, nil
}

// AccountHasInactive reports whether any of the account's persons has undone transactions.
func (q *queries) AccountHasInactive(ctx context.Context, ownerID int64) (bool, error) {
	var exists bool
	err := q.q.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM transactions t
			JOIN persons p ON t.person_id = p.id
			WHERE p.owner_id = ? AND t.active = 0
		)`,
		ownerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check undone transactions: %w", err)
	}
	return exists, nil
}

// SetActive flips a transaction's active flag.
func (q *queries) SetActive(ctx context.Context, txID int64, active bool) error {
	res, err := q.q.ExecContext(ctx, "UPDATE transactions SET active = ? WHERE id = ?", active, txID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return checkAffected(res, fmt.Sprintf("transaction %d", txID))
}

// PurgeInactive deletes the redo tail of a person.
func (q *queries) PurgeInactive(ctx context.Context, personID int64) (int64, error) {
	res, err := q.q.ExecContext(ctx, "DELETE FROM transactions WHERE person_id = ? AND active = 0", personID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge undone transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purged rows: %w", err)
	}
	return n, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var (
		typ    string
		amount decimal.Decimal
	)
	if err := row.Scan(&t.ID, &t.PersonID, &typ, &amount, &t.Description, &t.CreatedAt, &t.Active); err != nil {
		return nil, err
	}

	entry, err := models.DecodeEntry(models.TransactionType(typ), amount)
	if err != nil {
		return nil, err
	}
	t.Entry = entry

	return t, nil
}
