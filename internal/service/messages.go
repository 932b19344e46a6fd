package service

import "github.com/shopspring/decimal"

// Trip is the wire form of a trip.
type Trip struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Members   []string        `json:"members"`
	Rate      decimal.Decimal `json:"rate"`
	CreatedAt int64           `json:"created_at"`
}

// Expense is the wire form of an expense. SecondaryAmount is display-only.
type Expense struct {
	ID              int64           `json:"id"`
	Payer           string          `json:"payer"`
	Amount          int64           `json:"amount"`
	SecondaryAmount int64           `json:"secondary_amount"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	Currency        string          `json:"currency"`
	Item            string          `json:"item"`
	Date            string          `json:"date"`
	SplitBy         []string        `json:"split_by,omitempty"`
}

type Transfer struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Amount          int64  `json:"amount"`
	SecondaryAmount int64  `json:"secondary_amount"`
}

type Balance struct {
	Name   string `json:"name"`
	Paid   int64  `json:"paid"`
	Net    int64  `json:"net"`
	Member bool   `json:"member"`
}

type PayerSummary struct {
	Payer          string     `json:"payer"`
	Total          int64      `json:"total"`
	SecondaryTotal int64      `json:"secondary_total"`
	Count          int        `json:"count"`
	Expenses       []*Expense `json:"expenses"`
}

// Currencies names the two display labels configured for the server.
type Currencies struct {
	Ledger    string `json:"ledger"`
	Secondary string `json:"secondary"`
}

type CreateTripRequest struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"`
	Rate    float64  `json:"rate,omitempty"`
}

type CreateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripRequest struct {
	TripID string `json:"trip_id"`
}

type GetTripResponse struct {
	Trip           *Trip      `json:"trip"`
	Expenses       []*Expense `json:"expenses"`
	Total          int64      `json:"total"`
	SecondaryTotal int64      `json:"secondary_total"`
	Currencies     Currencies `json:"currencies"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []*Trip `json:"trips"`
}

type DeleteTripRequest struct {
	TripID string `json:"trip_id"`
}

type DeleteTripResponse struct {
	Success bool `json:"success"`
}

type SetRateRequest struct {
	TripID string  `json:"trip_id"`
	Rate   float64 `json:"rate"`
}

type SetRateResponse struct {
	Trip *Trip `json:"trip"`
}

type AddMemberRequest struct {
	TripID string `json:"trip_id"`
	Name   string `json:"name"`
}

type RemoveMemberRequest struct {
	TripID string `json:"trip_id"`
	Name   string `json:"name"`
}

type ClearMembersRequest struct {
	TripID string `json:"trip_id"`
}

// MembersResponse returns the roster after a roster change.
type MembersResponse struct {
	Members []string `json:"members"`
}

type AddExpenseRequest struct {
	TripID         string          `json:"trip_id"`
	Payer          string          `json:"payer"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Currency       string          `json:"currency"`
	Item           string          `json:"item"`
	SplitBy        []string        `json:"split_by,omitempty"`
}

type UpdateExpenseRequest struct {
	TripID         string          `json:"trip_id"`
	ExpenseID      int64           `json:"expense_id"`
	Payer          string          `json:"payer"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Currency       string          `json:"currency"`
	Item           string          `json:"item"`
	SplitBy        []string        `json:"split_by,omitempty"`
}

type ExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	TripID    string `json:"trip_id"`
	ExpenseID int64  `json:"expense_id"`
}

type DeleteExpenseResponse struct {
	Success bool `json:"success"`
}

type ClearExpensesRequest struct {
	TripID string `json:"trip_id"`
}

type ClearExpensesResponse struct {
	Success bool `json:"success"`
}

type GetSettlementRequest struct {
	TripID string `json:"trip_id"`
}

type GetSettlementResponse struct {
	Status    string      `json:"status"`
	Transfers []*Transfer `json:"transfers"`
	Balances  []*Balance  `json:"balances"`
	Total     int64       `json:"total"`
	Average   int64       `json:"average"`
	// SkippedRecords counts stored expenses that could not be applied.
	SkippedRecords int `json:"skipped_records,omitempty"`
}

type GetPayerSummaryRequest struct {
	TripID string `json:"trip_id"`
}

type GetPayerSummaryResponse struct {
	Payers []*PayerSummary `json:"payers"`
}

type GetPersonalSummaryRequest struct {
	TripID string `json:"trip_id"`
	Name   string `json:"name"`
}

type GetPersonalSummaryResponse struct {
	Name               string     `json:"name"`
	Paid               int64      `json:"paid"`
	SecondaryPaid      int64      `json:"secondary_paid"`
	FairShare          int64      `json:"fair_share"`
	SecondaryFairShare int64      `json:"secondary_fair_share"`
	Net                int64      `json:"net"`
	SecondaryNet       int64      `json:"secondary_net"`
	Expenses           []*Expense `json:"expenses"`
}
