// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/models"
)

var (
	// ErrNotFound is returned when a trip or expense does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateMember is returned when a name is already on the roster.
	ErrDuplicateMember = errors.New("member already exists")
	// ErrMemberHasExpenses is returned when removing a member who paid for
	// an expense that still exists.
	ErrMemberHasExpenses = errors.New("member has paid expenses")
	// ErrAlreadyExists is returned when creating a trip with a taken ID.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the interface for trip storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateTrip persists a new trip.
	// The trip.ID and trip.CreatedAt fields are populated when empty.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip with its roster in insertion order.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTrips retrieves all trips, newest first.
	ListTrips(ctx context.Context) ([]*models.Trip, error)

	// DeleteTrip removes a trip, its roster and its expenses.
	DeleteTrip(ctx context.Context, tripID string) error

	// SetRate replaces the trip's conversion rate.
	SetRate(ctx context.Context, tripID string, rate decimal.Decimal) error

	// AddMember appends name to the roster.
	AddMember(ctx context.Context, tripID, name string) error

	// RemoveMember drops name from the roster. Fails with
	// ErrMemberHasExpenses while name is the payer of any expense.
	RemoveMember(ctx context.Context, tripID, name string) error

	// ClearMembers empties the roster. Fails with ErrMemberHasExpenses
	// while any expense exists.
	ClearMembers(ctx context.Context, tripID string) error

	// CreateExpense persists a new expense.
	// The expense.ID field is populated (and bumped to stay unique) by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves one expense of a trip.
	GetExpense(ctx context.Context, tripID string, expenseID int64) (*models.Expense, error)

	// UpdateExpense replaces an existing expense.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes one expense.
	DeleteExpense(ctx context.Context, tripID string, expenseID int64) error

	// ListExpenses retrieves all expenses of a trip in insertion order.
	ListExpenses(ctx context.Context, tripID string) ([]*models.Expense, error)

	// ClearExpenses removes every expense of a trip, keeping the roster.
	ClearExpenses(ctx context.Context, tripID string) error

	// Close releases any resources held by the store.
	Close() error
}
