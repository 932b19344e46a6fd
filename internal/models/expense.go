package models

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
)

// DateLayout is the display timestamp of an expense. It doubles as a sort
// key, which only orders correctly within one calendar year.
const DateLayout = "01/02 15:04"

// Expense is one cost event on a trip.
// Once stored it is only replaced as a whole (edit) or removed.
type Expense struct {
	// ID is the creation time in Unix milliseconds, unique within a trip.
	ID int64

	// TripID is the trip this expense belongs to.
	TripID string

	// Payer is the member who fronted the money.
	Payer string

	// Amount is the cost in ledger units, rounded when the expense was
	// entered or last edited.
	Amount int64

	// OriginalAmount is the amount as typed, in Currency.
	OriginalAmount decimal.Decimal

	// Currency is the currency OriginalAmount was entered in.
	Currency calculator.Currency

	// Item is the human label (e.g., "Taxi", "Hotel").
	Item string

	// Date is the creation time formatted with DateLayout.
	Date string

	// SplitBy is the subset of members sharing this cost.
	// Empty means the whole roster at computation time.
	SplitBy []string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// SortExpenses orders expenses newest first by (Date, ID).
func SortExpenses(expenses []*Expense) {
	slices.SortStableFunc(expenses, func(a, b *Expense) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
