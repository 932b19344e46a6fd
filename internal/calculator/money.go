// Package calculator implements the trip settlement engine: ledger money
// conversion, per-expense split accumulation into net balances, and greedy
// debtor/creditor matching into transfers.
//
// All amounts entering the ledger currency are rounded half away from zero.
// Balances stay real-valued until they are displayed or emitted as transfers.
package calculator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Currency identifies which currency an entered amount was denominated in.
type Currency string

const (
	// CurrencyLedger is the currency every balance is computed in.
	CurrencyLedger Currency = "ledger"
	// CurrencySecondary is converted into the ledger currency via the trip rate.
	CurrencySecondary Currency = "secondary"
)

// ErrInvalidRate is returned for conversion rates that are not finite and positive.
var ErrInvalidRate = errors.New("rate must be a finite number greater than zero")

// Valid reports whether c is a known currency.
func (c Currency) Valid() bool {
	return c == CurrencyLedger || c == CurrencySecondary
}

// ParseRate validates a rate given as "1 secondary unit = rate ledger units".
func ParseRate(rate float64) (decimal.Decimal, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return decimal.Zero, ErrInvalidRate
	}
	return decimal.NewFromFloat(rate), nil
}

// ToLedger converts an entered amount into integer ledger units.
// The rate is ignored for ledger-currency amounts.
func ToLedger(amount decimal.Decimal, cur Currency, rate decimal.Decimal) int64 {
	if cur == CurrencySecondary {
		amount = amount.Mul(rate)
	}
	return amount.Round(0).IntPart()
}

// ToSecondary converts a ledger amount for display. The result never feeds
// back into the ledger. A non-positive rate yields 0.
func ToSecondary(ledger int64, rate decimal.Decimal) int64 {
	if !rate.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(ledger).Div(rate).Round(0).IntPart()
}

// Round rounds a real-valued ledger amount to whole units.
func Round(v float64) int64 {
	return int64(math.Round(v))
}
