package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
)

func toTrip(trip *models.Trip) *Trip {
	members := trip.Members
	if members == nil {
		members = []string{}
	}
	return &Trip{
		ID:        trip.ID,
		Name:      trip.Name,
		Members:   members,
		Rate:      trip.Rate,
		CreatedAt: trip.CreatedAt,
	}
}

func toExpense(e *models.Expense, rate decimal.Decimal) *Expense {
	return &Expense{
		ID:              e.ID,
		Payer:           e.Payer,
		Amount:          e.Amount,
		SecondaryAmount: calculator.ToSecondary(e.Amount, rate),
		OriginalAmount:  e.OriginalAmount,
		Currency:        string(e.Currency),
		Item:            e.Item,
		Date:            e.Date,
		SplitBy:         e.SplitBy,
	}
}

func toExpenses(expenses []*models.Expense, rate decimal.Decimal) []*Expense {
	out := make([]*Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toExpense(e, rate)
	}
	return out
}

// toCalcExpenses keeps insertion order, which the accumulator relies on for
// the order of non-roster names.
func toCalcExpenses(expenses []*models.Expense) []calculator.Expense {
	out := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = calculator.Expense{
			ID:     e.ID,
			Payer:  e.Payer,
			Amount: e.Amount,
			Item:   e.Item,
			Split:  calculator.SplitFromNames(e.SplitBy),
		}
	}
	return out
}
