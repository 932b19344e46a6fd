// Package models defines the stored domain models for tripsplit.
//
// # Models
//
//   - Trip: a roster of participant names plus the conversion rate
//   - Expense: one cost event, its payer, and who shares it
//
// Participants are identified by display name only, scoped to one trip.
//
// # Design Principles
//
// 1. **Stored facts only**: balances and transfers are derived on every
// query by the calculator package and never persisted
// 2. **Ledger amounts are fixed at entry**: Expense.Amount is converted once
// and is not recomputed when the trip rate changes
// 3. **Avoid circular references**: use ID strings instead of pointers for
// relationships
package models
