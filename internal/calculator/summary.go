package calculator

import (
	"cmp"
	"slices"
)

// PayerTotal is how much one participant fronted across a trip.
type PayerTotal struct {
	Payer string
	Total int64
	Count int
}

// PayerTotals sums expense amounts per payer, largest total first.
// Payers with equal totals keep the order in which they first paid.
// Records ComputeBalances would skip are left out.
func PayerTotals(roster Roster, expenses []Expense) []PayerTotal {
	var totals []PayerTotal
	pos := make(map[string]int)
	for _, e := range expenses {
		if accumulable(e, roster) != nil {
			continue
		}
		i, ok := pos[e.Payer]
		if !ok {
			i = len(totals)
			pos[e.Payer] = i
			totals = append(totals, PayerTotal{Payer: e.Payer})
		}
		totals[i].Total += e.Amount
		totals[i].Count++
	}
	slices.SortStableFunc(totals, func(a, b PayerTotal) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return totals
}

// Position is one participant's headline numbers.
type Position struct {
	Name      string
	Paid      int64
	FairShare float64
	Net       float64 // Positive = receives money, negative = pays
}

// PersonalPosition reports what name paid against an even share of the
// whole trip's spending.
//
// FairShare divides the group total by the roster size and ignores each
// expense's split subset, so Net can differ from the settlement balance
// when subsets are used. The settlement balance is authoritative; this is
// the simplified per-person headline.
//
// ok is false when the roster is empty or name is not on it.
func PersonalPosition(name string, roster Roster, expenses []Expense) (pos Position, ok bool) {
	if roster.Len() == 0 || !roster.Contains(name) {
		return Position{}, false
	}

	var total int64
	pos.Name = name
	for _, e := range expenses {
		if accumulable(e, roster) != nil {
			continue
		}
		total += e.Amount
		if e.Payer == name {
			pos.Paid += e.Amount
		}
	}
	pos.FairShare = float64(total) / float64(roster.Len())
	pos.Net = float64(pos.Paid) - pos.FairShare
	return pos, true
}
