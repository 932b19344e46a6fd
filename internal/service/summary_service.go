package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
)

// GetSettlement computes who pays whom to settle the trip.
func (s *TripService) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	slog.Info("GetSettlement request received", "trip_id", req.Msg.TripID)

	trip, expenses, err := s.loadTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("GetSettlement failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}
	roster, err := calculator.NewRoster(trip.Members...)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("trip %s roster: %w", trip.ID, err))
	}

	settlement, err := calculator.Settle(roster, toCalcExpenses(expenses))
	skipped := countErrors(err)
	if err != nil {
		slog.Warn("GetSettlement: skipped malformed expenses",
			"trip_id", trip.ID,
			"skipped", skipped,
			"error", err,
		)
	}
	logResidue(trip.ID, settlement)

	if s.observer != nil {
		s.observer.ObserveSettlement(string(settlement.Status))
	}

	resp := &GetSettlementResponse{
		Status:         string(settlement.Status),
		Transfers:      make([]*Transfer, len(settlement.Transfers)),
		Balances:       make([]*Balance, len(settlement.Balances)),
		Total:          settlement.Total,
		Average:        calculator.Round(settlement.Average),
		SkippedRecords: skipped,
	}
	for i, t := range settlement.Transfers {
		resp.Transfers[i] = &Transfer{
			From:            t.From,
			To:              t.To,
			Amount:          t.Amount,
			SecondaryAmount: calculator.ToSecondary(t.Amount, trip.Rate),
		}
	}
	for i, b := range settlement.Balances {
		resp.Balances[i] = &Balance{
			Name:   b.Name,
			Paid:   b.Paid,
			Net:    b.Rounded(),
			Member: b.Member,
		}
	}

	slog.Info("GetSettlement successful",
		"trip_id", trip.ID,
		"status", settlement.Status,
		"transfers_count", len(settlement.Transfers),
	)
	return connect.NewResponse(resp), nil
}

// GetPayerSummary groups expenses by payer, biggest spender first.
func (s *TripService) GetPayerSummary(ctx context.Context, req *connect.Request[GetPayerSummaryRequest]) (*connect.Response[GetPayerSummaryResponse], error) {
	slog.Info("GetPayerSummary request received", "trip_id", req.Msg.TripID)

	trip, expenses, err := s.loadTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("GetPayerSummary failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}

	roster, err := calculator.NewRoster(trip.Members...)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("trip %s roster: %w", trip.ID, err))
	}

	byPayer := make(map[string][]*models.Expense)
	for _, e := range expenses {
		byPayer[e.Payer] = append(byPayer[e.Payer], e)
	}

	totals := calculator.PayerTotals(roster, toCalcExpenses(expenses))
	payers := make([]*PayerSummary, len(totals))
	for i, pt := range totals {
		paid := byPayer[pt.Payer]
		models.SortExpenses(paid)
		payers[i] = &PayerSummary{
			Payer:          pt.Payer,
			Total:          pt.Total,
			SecondaryTotal: calculator.ToSecondary(pt.Total, trip.Rate),
			Count:          pt.Count,
			Expenses:       toExpenses(paid, trip.Rate),
		}
	}

	slog.Info("GetPayerSummary successful", "trip_id", trip.ID, "payers_count", len(payers))
	return connect.NewResponse(&GetPayerSummaryResponse{Payers: payers}), nil
}

// GetPersonalSummary reports what one member paid against an even share
// of the trip total.
func (s *TripService) GetPersonalSummary(ctx context.Context, req *connect.Request[GetPersonalSummaryRequest]) (*connect.Response[GetPersonalSummaryResponse], error) {
	slog.Info("GetPersonalSummary request received", "trip_id", req.Msg.TripID, "name", req.Msg.Name)

	trip, expenses, err := s.loadTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("GetPersonalSummary failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}
	roster, err := calculator.NewRoster(trip.Members...)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("trip %s roster: %w", trip.ID, err))
	}

	if !trip.HasMember(req.Msg.Name) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%q is not a member of trip %s", req.Msg.Name, trip.ID))
	}
	pos, _ := calculator.PersonalPosition(req.Msg.Name, roster, toCalcExpenses(expenses))

	var paid []*models.Expense
	for _, e := range expenses {
		if e.Payer == pos.Name {
			paid = append(paid, e)
		}
	}
	models.SortExpenses(paid)

	fairShare := calculator.Round(pos.FairShare)
	net := calculator.Round(pos.Net)
	return connect.NewResponse(&GetPersonalSummaryResponse{
		Name:               pos.Name,
		Paid:               pos.Paid,
		SecondaryPaid:      calculator.ToSecondary(pos.Paid, trip.Rate),
		FairShare:          fairShare,
		SecondaryFairShare: calculator.ToSecondary(fairShare, trip.Rate),
		Net:                net,
		SecondaryNet:       calculator.ToSecondary(net, trip.Rate),
		Expenses:           toExpenses(paid, trip.Rate),
	}), nil
}

// logResidue reports how far the rounded transfers leave members from zero.
func logResidue(tripID string, settlement calculator.Settlement) {
	if settlement.Status != calculator.StatusCalculated {
		return
	}
	var worst float64
	for _, v := range calculator.Apply(settlement.Balances, settlement.Transfers) {
		worst = math.Max(worst, math.Abs(v))
	}
	slog.Debug("Settlement residue", "trip_id", tripID, "max_abs", worst)
}

// countErrors counts the records joined into err by errors.Join.
func countErrors(err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
