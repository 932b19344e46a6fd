package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/notify"
)

// expenseInput is the user-editable part of an expense.
type expenseInput struct {
	payer    string
	original decimal.Decimal
	currency string
	item     string
	splitBy  []string
}

// build converts the input at the trip's current rate and validates it
// against the roster. The returned expense has no ID or date yet.
func (in expenseInput) build(trip *models.Trip) (*models.Expense, error) {
	cur := calculator.Currency(in.currency)
	if !cur.Valid() {
		return nil, fmt.Errorf("%w: unknown currency %q", calculator.ErrInvalidExpense, in.currency)
	}
	if !in.original.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", calculator.ErrInvalidExpense)
	}

	roster, err := calculator.NewRoster(trip.Members...)
	if err != nil {
		return nil, err
	}

	splitBy := make([]string, len(in.splitBy))
	for i, name := range in.splitBy {
		splitBy[i] = strings.TrimSpace(name)
	}

	calc := calculator.Expense{
		Payer:  strings.TrimSpace(in.payer),
		Amount: calculator.ToLedger(in.original, cur, trip.Rate),
		Item:   strings.TrimSpace(in.item),
		Split:  calculator.SplitFromNames(splitBy).Normalize(roster),
	}
	if err := calculator.ValidateExpense(calc, roster); err != nil {
		return nil, err
	}

	return &models.Expense{
		TripID:         trip.ID,
		Payer:          calc.Payer,
		Amount:         calc.Amount,
		OriginalAmount: in.original,
		Currency:       cur,
		Item:           calc.Item,
		SplitBy:        calc.Split.Members(),
	}, nil
}

// AddExpense records a new expense, converting it to the ledger currency
// with the trip's current rate.
func (s *TripService) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"trip_id", req.Msg.TripID,
		"payer", req.Msg.Payer,
		"amount", req.Msg.OriginalAmount,
		"currency", req.Msg.Currency,
	)

	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("AddExpense failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}

	expense, err := expenseInput{
		payer:    req.Msg.Payer,
		original: req.Msg.OriginalAmount,
		currency: req.Msg.Currency,
		item:     req.Msg.Item,
		splitBy:  req.Msg.SplitBy,
	}.build(trip)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	now := time.Now()
	expense.ID = now.UnixMilli()
	expense.Date = now.Format(models.DateLayout)
	expense.CreatedAt = now.Unix()

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "trip_id", trip.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense added",
		"trip_id", trip.ID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
	)
	s.publish(ctx, notify.NewTripEvent(trip.ID, notify.KindExpenseAdded, expense.ID))

	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense, trip.Rate)}), nil
}

// UpdateExpense replaces an expense. The amount is re-derived with the
// trip's current rate; ID and date are kept.
func (s *TripService) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	slog.Info("UpdateExpense request received",
		"trip_id", req.Msg.TripID,
		"expense_id", req.Msg.ExpenseID,
	)

	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("UpdateExpense failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}
	existing, err := s.store.GetExpense(ctx, trip.ID, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("UpdateExpense failed", "trip_id", trip.ID, "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, storeError(err)
	}

	expense, err := expenseInput{
		payer:    req.Msg.Payer,
		original: req.Msg.OriginalAmount,
		currency: req.Msg.Currency,
		item:     req.Msg.Item,
		splitBy:  req.Msg.SplitBy,
	}.build(trip)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	expense.ID = existing.ID
	expense.Date = existing.Date
	expense.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "trip_id", trip.ID, "expense_id", expense.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense updated",
		"trip_id", trip.ID,
		"expense_id", expense.ID,
		"old_amount", existing.Amount,
		"amount", expense.Amount,
	)
	s.publish(ctx, notify.NewTripEvent(trip.ID, notify.KindExpenseUpdated, expense.ID))

	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense, trip.Rate)}), nil
}

// DeleteExpense removes one expense.
func (s *TripService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received",
		"trip_id", req.Msg.TripID,
		"expense_id", req.Msg.ExpenseID,
	)

	if err := s.store.DeleteExpense(ctx, req.Msg.TripID, req.Msg.ExpenseID); err != nil {
		slog.Error("DeleteExpense failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}

	s.publish(ctx, notify.NewTripEvent(req.Msg.TripID, notify.KindExpenseDeleted, req.Msg.ExpenseID))
	return connect.NewResponse(&DeleteExpenseResponse{Success: true}), nil
}

// ClearExpenses removes every expense of a trip and keeps the roster.
func (s *TripService) ClearExpenses(ctx context.Context, req *connect.Request[ClearExpensesRequest]) (*connect.Response[ClearExpensesResponse], error) {
	slog.Info("ClearExpenses request received", "trip_id", req.Msg.TripID)

	if err := s.store.ClearExpenses(ctx, req.Msg.TripID); err != nil {
		slog.Error("ClearExpenses failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}

	s.publish(ctx, notify.NewTripEvent(req.Msg.TripID, notify.KindExpensesCleared, 0))
	return connect.NewResponse(&ClearExpensesResponse{Success: true}), nil
}
