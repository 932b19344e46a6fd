package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/tripsplit/internal/storage"
)

// listMembers returns the roster of a trip in insertion order.
func (s *SQLiteStore) listMembers(ctx context.Context, tripID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM trip_members WHERE trip_id = ? ORDER BY position",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, name)
	}
	return members, rows.Err()
}

// AddMember appends name to the roster.
func (s *SQLiteStore) AddMember(ctx context.Context, tripID, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tripExists(ctx, tx, tripID); err != nil {
		return err
	}

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trip_members WHERE trip_id = ? AND name = ?",
		tripID, name,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check member: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%q: %w", name, storage.ErrDuplicateMember)
	}

	// Positions only grow, so removed members leave gaps that keep the order stable
	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM trip_members WHERE trip_id = ?",
		tripID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read roster position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trip_members (trip_id, name, position) VALUES (?, ?, ?)",
		tripID, name, next,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveMember drops name from the roster unless they paid a stored expense.
// Split lists that mention name are left untouched.
func (s *SQLiteStore) RemoveMember(ctx context.Context, tripID, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tripExists(ctx, tx, tripID); err != nil {
		return err
	}

	var paid int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE trip_id = ? AND payer = ?",
		tripID, name,
	).Scan(&paid)
	if err != nil {
		return fmt.Errorf("failed to check expenses: %w", err)
	}
	if paid > 0 {
		return fmt.Errorf("%q paid %d expenses: %w", name, paid, storage.ErrMemberHasExpenses)
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM trip_members WHERE trip_id = ? AND name = ?",
		tripID, name,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if err := expectAffected(res, fmt.Sprintf("member %q", name)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearMembers empties the roster of a trip that has no expenses.
func (s *SQLiteStore) ClearMembers(ctx context.Context, tripID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tripExists(ctx, tx, tripID); err != nil {
		return err
	}

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE trip_id = ?",
		tripID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count expenses: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("trip has %d expenses: %w", count, storage.ErrMemberHasExpenses)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM trip_members WHERE trip_id = ?", tripID); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
