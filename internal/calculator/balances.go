package calculator

import "errors"

// MemberBalance is one participant's position across all expenses of a trip.
type MemberBalance struct {
	Name   string
	Net    float64 // Positive = owed money by the group, negative = owes the group
	Paid   int64   // Total amount fronted
	Owed   float64 // Sum of unrounded shares
	Member bool    // False for names referenced by expenses but no longer on the roster
}

// Rounded returns the net balance in whole ledger units.
func (b MemberBalance) Rounded() int64 {
	return Round(b.Net)
}

// ComputeBalances folds expenses into a net balance per participant.
//
// Algorithm:
//   - Every roster member starts at zero
//   - For each expense: payer +amount, each split target -amount/len(targets)
//   - Shares are real-valued; nothing is rounded here
//
// The result is ordered by roster position, followed by names that only
// appear on expenses (payers or split targets who left the roster) in the
// order they were first seen. Those entries carry Member=false.
//
// Records that cannot be divided (non-positive amount, no payer, nobody to
// split between) are skipped. The returned error joins one ErrInvalidExpense
// per skipped record, and the balances over the remaining records are still
// returned.
func ComputeBalances(roster Roster, expenses []Expense) ([]MemberBalance, error) {
	balances := make([]MemberBalance, 0, roster.Len())
	pos := make(map[string]int, roster.Len())
	for _, name := range roster.Names() {
		pos[name] = len(balances)
		balances = append(balances, MemberBalance{Name: name, Member: true})
	}

	// Initialize a balance for a name that is not on the roster
	entry := func(name string) *MemberBalance {
		i, ok := pos[name]
		if !ok {
			i = len(balances)
			pos[name] = i
			balances = append(balances, MemberBalance{Name: name})
		}
		return &balances[i]
	}

	var errs []error
	for _, e := range expenses {
		if err := accumulable(e, roster); err != nil {
			errs = append(errs, err)
			continue
		}

		targets := e.Split.Targets(roster)
		share := float64(e.Amount) / float64(len(targets))
		for _, t := range targets {
			b := entry(t)
			b.Owed += share
			b.Net -= share
		}

		payer := entry(e.Payer)
		payer.Paid += e.Amount
		payer.Net += float64(e.Amount)
	}

	return balances, errors.Join(errs...)
}

// BalanceMap returns the rounded integer view of balances keyed by name.
func BalanceMap(balances []MemberBalance) map[string]int64 {
	out := make(map[string]int64, len(balances))
	for _, b := range balances {
		out[b.Name] = b.Rounded()
	}
	return out
}
