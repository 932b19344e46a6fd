package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

// CreateExpense persists a new expense and its split list.
// A zero ID becomes the current Unix millisecond; a taken ID is bumped
// until it is free within the trip.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	now := time.Now()
	if expense.ID == 0 {
		expense.ID = now.UnixMilli()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now.Unix()
	}
	if expense.Date == "" {
		expense.Date = time.UnixMilli(expense.ID).Format(models.DateLayout)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tripExists(ctx, tx, expense.TripID); err != nil {
		return err
	}

	for {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM expenses WHERE trip_id = ? AND id = ?",
			expense.TripID, expense.ID,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to check expense id: %w", err)
		}
		expense.ID++
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (trip_id, id, payer, amount, original_amount, currency, item, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.TripID, expense.ID, expense.Payer, expense.Amount,
		expense.OriginalAmount.String(), string(expense.Currency), expense.Item,
		expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves one expense of a trip.
func (s *SQLiteStore) GetExpense(ctx context.Context, tripID string, expenseID int64) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT trip_id, id, payer, amount, original_amount, currency, item, date, created_at
		 FROM expenses WHERE trip_id = ? AND id = ?`,
		tripID, expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	splits, err := s.loadSplits(ctx, tripID)
	if err != nil {
		return nil, err
	}
	expense.SplitBy = splits[expense.ID]
	return expense, nil
}

// UpdateExpense replaces an existing expense. ID, TripID and CreatedAt
// identify the row and are not changed.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses
		 SET payer = ?, amount = ?, original_amount = ?, currency = ?, item = ?, date = ?
		 WHERE trip_id = ? AND id = ?`,
		expense.Payer, expense.Amount, expense.OriginalAmount.String(),
		string(expense.Currency), expense.Item, expense.Date,
		expense.TripID, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := expectAffected(res, fmt.Sprintf("expense %d", expense.ID)); err != nil {
		return err
	}

	// Replace the split list wholesale
	_, err = tx.ExecContext(ctx,
		"DELETE FROM expense_splits WHERE trip_id = ? AND expense_id = ?",
		expense.TripID, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes one expense; its split list cascades.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, tripID string, expenseID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE trip_id = ? AND id = ?",
		tripID, expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("expense %d", expenseID))
}

// ListExpenses retrieves all expenses of a trip in insertion order.
func (s *SQLiteStore) ListExpenses(ctx context.Context, tripID string) ([]*models.Expense, error) {
	if err := tripExists(ctx, s.db, tripID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT trip_id, id, payer, amount, original_amount, currency, item, date, created_at
		 FROM expenses WHERE trip_id = ? ORDER BY rowid`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := []*models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splits, err := s.loadSplits(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.SplitBy = splits[e.ID]
	}
	return expenses, nil
}

// ClearExpenses removes every expense of a trip, keeping the roster.
func (s *SQLiteStore) ClearExpenses(ctx context.Context, tripID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tripExists(ctx, tx, tripID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE trip_id = ?", tripID); err != nil {
		return fmt.Errorf("failed to clear expenses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var original, currency string
	err := row.Scan(&e.TripID, &e.ID, &e.Payer, &e.Amount, &original,
		&currency, &e.Item, &e.Date, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	e.Currency = calculator.Currency(currency)
	e.OriginalAmount, err = decimal.NewFromString(original)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q of expense %d: %w", original, e.ID, err)
	}
	return e, nil
}

// loadSplits returns the split lists of a trip keyed by expense ID.
// Expenses shared by the whole roster have no entry.
func (s *SQLiteStore) loadSplits(ctx context.Context, tripID string) (map[int64][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, name FROM expense_splits WHERE trip_id = ? ORDER BY expense_id, position",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits[id] = append(splits[id], name)
	}
	return splits, rows.Err()
}

func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, name := range expense.SplitBy {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (trip_id, expense_id, name, position) VALUES (?, ?, ?, ?)",
			expense.TripID, expense.ID, name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split %q: %w", name, err)
		}
	}
	return nil
}
