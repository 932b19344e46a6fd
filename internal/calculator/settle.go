package calculator

import (
	"cmp"
	"math"
	"slices"
)

// Epsilon is the balance magnitude, in ledger units, below which a
// participant is treated as settled.
const Epsilon = 1.0

// Status tells the caller which message to render for a settlement.
type Status string

const (
	StatusCalculated           Status = "calculated"
	StatusNeedMoreParticipants Status = "need_more_participants"
	StatusNoExpenses           Status = "no_expenses"
)

// Transfer says From must pay Amount to To.
type Transfer struct {
	From   string
	To     string
	Amount int64
}

// Settlement is the result of settling a trip.
// Transfers is empty both when everyone is settled and when Status is not
// StatusCalculated; check Status to tell them apart.
type Settlement struct {
	Status    Status
	Transfers []Transfer
	Balances  []MemberBalance
	Total     int64   // Sum of amounts over the records that were counted
	Average   float64 // Total divided evenly over the roster
}

type pending struct {
	name   string
	amount float64 // Always positive: what is still owed or still due
}

// MatchTransfers turns net balances into a short list of transfers.
//
// This is a greedy heuristic, not a minimum-transfer solver:
//   - Debtors (net < -Epsilon) sorted most negative first
//   - Creditors (net > Epsilon) sorted most positive first
//   - Repeatedly settle min(debt, credit) between the current pair and
//     advance whichever side is paid off
//
// Sorts are stable, so participants with equal balances keep their order in
// the input, which ComputeBalances makes roster order. Only roster members
// take part. Each side is first rounded to whole ledger units that add up to
// the same total, so every participant ends less than one unit from zero.
// Residue below Epsilon is never surfaced.
func MatchTransfers(balances []MemberBalance) []Transfer {
	var debtors, creditors []pending
	var owed, due float64
	for _, b := range balances {
		if !b.Member {
			continue
		}
		if b.Net < -Epsilon {
			debtors = append(debtors, pending{name: b.Name, amount: -b.Net})
			owed -= b.Net
		} else if b.Net > Epsilon {
			creditors = append(creditors, pending{name: b.Name, amount: b.Net})
			due += b.Net
		}
	}
	byAmountDesc := func(a, b pending) int { return cmp.Compare(b.amount, a.amount) }
	slices.SortStableFunc(debtors, byAmountDesc)
	slices.SortStableFunc(creditors, byAmountDesc)

	total := Round((owed + due) / 2)
	pay := apportion(debtors, total)
	receive := apportion(creditors, total)

	transfers := make([]Transfer, 0, max(0, len(debtors)+len(creditors)-1))
	i, j := 0, 0
	for i < len(pay) && j < len(receive) {
		if pay[i] == 0 {
			i++
			continue
		}
		if receive[j] == 0 {
			j++
			continue
		}

		amount := min(pay[i], receive[j])
		transfers = append(transfers, Transfer{
			From:   debtors[i].name,
			To:     creditors[j].name,
			Amount: amount,
		})
		pay[i] -= amount
		receive[j] -= amount
	}
	return transfers
}

// apportion rounds each amount down or up to whole units so the results sum
// to total. Units go to the largest fractional parts first; ties keep input
// order.
func apportion(side []pending, total int64) []int64 {
	out := make([]int64, len(side))
	if len(side) == 0 {
		return out
	}
	order := make([]int, len(side))
	var sum int64
	for k, p := range side {
		out[k] = int64(math.Floor(p.amount))
		sum += out[k]
		order[k] = k
	}
	frac := func(k int) float64 { return side[k].amount - math.Floor(side[k].amount) }
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(frac(b), frac(a)) })

	for n := 0; sum < total; n++ {
		out[order[n%len(order)]]++
		sum++
	}
	// Only reachable when sub-Epsilon balances were left out of the match
	for n := len(order) - 1; sum > total; n-- {
		if n < 0 {
			n = len(order) - 1
		}
		if k := order[n]; out[k] > 0 {
			out[k]--
			sum--
		}
	}
	return out
}

// ComputeSettlement matches the given balances. Fewer than two roster
// members is reported as StatusNeedMoreParticipants rather than as an empty
// (settled) transfer list.
func ComputeSettlement(balances []MemberBalance) Settlement {
	members := 0
	for _, b := range balances {
		if b.Member {
			members++
		}
	}
	if members < 2 {
		return Settlement{Status: StatusNeedMoreParticipants, Balances: balances}
	}
	return Settlement{
		Status:    StatusCalculated,
		Transfers: MatchTransfers(balances),
		Balances:  balances,
	}
}

// Settle runs the whole pipeline for a trip snapshot: balances, transfers,
// and the headline total and per-person average. The error reports records
// skipped by ComputeBalances; the settlement is still usable.
func Settle(roster Roster, expenses []Expense) (Settlement, error) {
	if roster.Len() < 2 {
		return Settlement{Status: StatusNeedMoreParticipants}, nil
	}
	if len(expenses) == 0 {
		return Settlement{Status: StatusNoExpenses}, nil
	}

	balances, err := ComputeBalances(roster, expenses)
	s := ComputeSettlement(balances)
	for _, e := range expenses {
		if accumulable(e, roster) == nil {
			s.Total += e.Amount
		}
	}
	s.Average = float64(s.Total) / float64(roster.Len())
	return s, err
}

// Apply debits each transfer's sender and credits its receiver, returning
// the resulting net positions of roster members.
func Apply(balances []MemberBalance, transfers []Transfer) map[string]float64 {
	out := make(map[string]float64, len(balances))
	for _, b := range balances {
		if b.Member {
			out[b.Name] = b.Net
		}
	}
	for _, t := range transfers {
		out[t.From] += float64(t.Amount)
		out[t.To] -= float64(t.Amount)
	}
	return out
}
