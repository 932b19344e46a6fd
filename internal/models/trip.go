package models

import "github.com/shopspring/decimal"

// Trip is one shared ledger: the roster, its conversion rate and, through
// Expense.TripID, its expenses.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format unless the
	// creator picked a join code).
	ID string

	// Name is the display name of the trip (e.g., "Seoul 2026").
	Name string

	// Members is the roster in insertion order. Names are unique.
	Members []string

	// Rate converts the secondary currency into the ledger currency:
	// 1 secondary unit = Rate ledger units. Changing it never rewrites
	// stored Expense.Amount values.
	Rate decimal.Decimal

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// HasMember reports whether name is on the trip roster.
func (t *Trip) HasMember(name string) bool {
	for _, m := range t.Members {
		if m == name {
			return true
		}
	}
	return false
}
