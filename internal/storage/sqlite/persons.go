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

const personColumns = "id, owner_id, name, daily_wage, balance, last_wage_date, created_at"

// CreatePerson persists a new person with a zero balance.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.CreatedAt == 0 {
		person.CreatedAt = time.Now().Unix()
	}
	person.Balance = decimal.Zero
	person.LastWageDate = ""

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO persons (owner_id, name, daily_wage, balance, created_at) VALUES (?, ?, ?, ?, ?)",
		person.OwnerID, person.Name, person.DailyWage, person.Balance, person.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read person id: %w", err)
	}
	person.ID = id

	return nil
}

// UpdatePerson applies the non-nil fields of update to an owned person.
func (s *SQLiteStore) UpdatePerson(ctx context.Context, ownerID, personID int64, update models.PersonUpdate) (*models.Person, error) {
	var result *models.Person
	err := s.withTx(ctx, func(ctx context.Context, q *queries) error {
		if _, err := q.GetPerson(ctx, ownerID, personID); err != nil {
			return err
		}

		if update.Name != nil {
			if _, err := q.q.ExecContext(ctx, "UPDATE persons SET name = ? WHERE id = ?", *update.Name, personID); err != nil {
				return fmt.Errorf("failed to update person name: %w", err)
			}
		}
		if update.DailyWage != nil {
			if _, err := q.q.ExecContext(ctx, "UPDATE persons SET daily_wage = ? WHERE id = ?", *update.DailyWage, personID); err != nil {
				return fmt.Errorf("failed to update daily wage: %w", err)
			}
		}

		p, err := q.GetPerson(ctx, ownerID, personID)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePerson removes an owned person; its transactions go with it.
func (s *SQLiteStore) DeletePerson(ctx context.Context, ownerID, personID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM persons WHERE id = ? AND owner_id = ?", personID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return checkAffected(res, fmt.Sprintf("person %d", personID))
}

// GetPerson retrieves a person owned by ownerID.
func (q *queries) GetPerson(ctx context.Context, ownerID, personID int64) (*models.Person, error) {
	p, err := scanPerson(q.q.QueryRowContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE id = ? AND owner_id = ?",
		personID, ownerID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("person %d: %w", personID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

// ListPersons retrieves all persons of an account, oldest first.
func (q *queries) ListPersons(ctx context.Context, ownerID int64) ([]*models.Person, error) {
	rows, err := q.q.QueryContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE owner_id = ? ORDER BY created_at ASC, id ASC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}

	return persons, nil
}

// ApplyDelta adds delta to a person's cached balance.
func (q *queries) ApplyDelta(ctx context.Context, personID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.q.QueryRowContext(ctx, "SELECT balance FROM persons WHERE id = ?", personID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("person %d: %w", personID, storage.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}

	balance = balance.Add(delta)
	if err := q.SetBalance(ctx, personID, balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// SetBalance overwrites a person's cached balance.
func (q *queries) SetBalance(ctx context.Context, personID int64, balance decimal.Decimal) error {
	res, err := q.q.ExecContext(ctx, "UPDATE persons SET balance = ? WHERE id = ?", balance, personID)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return checkAffected(res, fmt.Sprintf("person %d", personID))
}

// SetLastWageDate records the calendar day of the last wage accrual.
func (q *queries) SetLastWageDate(ctx context.Context, personID int64, date string) error {
	res, err := q.q.ExecContext(ctx, "UPDATE persons SET last_wage_date = ? WHERE id = ?", date, personID)
	if err != nil {
		return fmt.Errorf("failed to update last wage date: %w", err)
	}
	return checkAffected(res, fmt.Sprintf("person %d", personID))
}

func scanPerson(row rowScanner) (*models.Person, error) {
	p := &models.Person{}
	var lastWage sql.NullString
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.DailyWage, &p.Balance, &lastWage, &p.CreatedAt); err != nil {
		return nil, err
	}
	if lastWage.Valid && len(lastWage.String) >= len(models.DateLayout) {
		p.LastWageDate = lastWage.String[:len(models.DateLayout)]
	}
	return p, nil
}
