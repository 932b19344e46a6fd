package calculator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidExpense marks a malformed expense record.
var ErrInvalidExpense = errors.New("invalid expense")

// Expense is the minimal view of an expense record the engine needs.
// Amount is already converted and rounded into ledger units.
type Expense struct {
	ID     int64
	Payer  string
	Amount int64
	Item   string
	Split  Split
}

// ValidateExpense checks an expense against the roster it is being written to.
// Every failure wraps ErrInvalidExpense.
func ValidateExpense(e Expense, roster Roster) error {
	if e.Payer == "" || !roster.Contains(e.Payer) {
		return fmt.Errorf("%w: payer %q is not a trip member", ErrInvalidExpense, e.Payer)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidExpense, e.Amount)
	}
	if strings.TrimSpace(e.Item) == "" {
		return fmt.Errorf("%w: item cannot be empty", ErrInvalidExpense)
	}
	if e.Split.IsAll() {
		return nil
	}
	members := e.Split.Members()
	if len(members) == 0 {
		return fmt.Errorf("%w: split subset cannot be empty", ErrInvalidExpense)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if !roster.Contains(m) {
			return fmt.Errorf("%w: split member %q is not a trip member", ErrInvalidExpense, m)
		}
		if seen[m] {
			return fmt.Errorf("%w: split member %q listed twice", ErrInvalidExpense, m)
		}
		seen[m] = true
	}
	return nil
}

// accumulable is the weaker check applied to stored records: the payer and
// split targets may have left the roster, but the record must still divide.
func accumulable(e Expense, roster Roster) error {
	if e.Amount <= 0 {
		return fmt.Errorf("%w: expense %d has non-positive amount %d", ErrInvalidExpense, e.ID, e.Amount)
	}
	if e.Payer == "" {
		return fmt.Errorf("%w: expense %d has no payer", ErrInvalidExpense, e.ID)
	}
	if len(e.Split.Targets(roster)) == 0 {
		return fmt.Errorf("%w: expense %d has nobody to split between", ErrInvalidExpense, e.ID)
	}
	return nil
}
