package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/notify"
	"github.com/mmynk/tripsplit/internal/storage"
)

// SettlementObserver is told the status of every settlement served.
type SettlementObserver interface {
	ObserveSettlement(status string)
}

// TripService implements the Connect TripService.
type TripService struct {
	store       storage.Store
	publisher   notify.Publisher
	observer    SettlementObserver
	defaultRate decimal.Decimal
	currencies  Currencies
}

// Option configures a TripService.
type Option func(*TripService)

// WithPublisher sends a notify.TripEvent after every mutation.
func WithPublisher(p notify.Publisher) Option {
	return func(s *TripService) { s.publisher = p }
}

// WithSettlementObserver reports settlement statuses, e.g. to metrics.
func WithSettlementObserver(o SettlementObserver) Option {
	return func(s *TripService) { s.observer = o }
}

// WithDefaultRate sets the rate of trips created without one.
func WithDefaultRate(rate decimal.Decimal) Option {
	return func(s *TripService) { s.defaultRate = rate }
}

// WithCurrencies sets the currency labels echoed to clients.
func WithCurrencies(ledger, secondary string) Option {
	return func(s *TripService) { s.currencies = Currencies{Ledger: ledger, Secondary: secondary} }
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store, opts ...Option) *TripService {
	s := &TripService{
		store:       store,
		publisher:   notify.Noop{},
		defaultRate: decimal.NewFromInt(40),
		currencies:  Currencies{Ledger: "KRW", Secondary: "TWD"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTrip creates a trip with an optional initial roster.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error) {
	slog.Info("CreateTrip request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("trip name is required"))
	}

	members := make([]string, len(req.Msg.Members))
	for i, m := range req.Msg.Members {
		members[i] = strings.TrimSpace(m)
	}
	if _, err := calculator.NewRoster(members...); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	rate := s.defaultRate
	if req.Msg.Rate != 0 {
		var err error
		if rate, err = calculator.ParseRate(req.Msg.Rate); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	trip := &models.Trip{
		ID:      strings.TrimSpace(req.Msg.ID),
		Name:    name,
		Members: members,
		Rate:    rate,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		slog.Error("CreateTrip failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Trip created", "trip_id", trip.ID)
	s.publish(ctx, notify.NewTripEvent(trip.ID, notify.KindTripCreated, 0))

	return connect.NewResponse(&CreateTripResponse{Trip: toTrip(trip)}), nil
}

// GetTrip returns a trip with its expenses, newest first.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[GetTripRequest]) (*connect.Response[GetTripResponse], error) {
	slog.Info("GetTrip request received", "trip_id", req.Msg.TripID)

	trip, expenses, err := s.loadTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("GetTrip failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}

	var total int64
	for _, e := range expenses {
		total += e.Amount
	}
	models.SortExpenses(expenses)

	slog.Info("GetTrip successful", "trip_id", trip.ID, "expenses_count", len(expenses))

	return connect.NewResponse(&GetTripResponse{
		Trip:           toTrip(trip),
		Expenses:       toExpenses(expenses, trip.Rate),
		Total:          total,
		SecondaryTotal: calculator.ToSecondary(total, trip.Rate),
		Currencies:     s.currencies,
	}), nil
}

// ListTrips returns every trip, newest first.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[ListTripsRequest]) (*connect.Response[ListTripsResponse], error) {
	slog.Info("ListTrips request received")

	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		slog.Error("ListTrips failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*Trip, len(trips))
	for i, trip := range trips {
		out[i] = toTrip(trip)
	}

	slog.Info("ListTrips successful", "count", len(trips))
	return connect.NewResponse(&ListTripsResponse{Trips: out}), nil
}

// DeleteTrip removes a trip with its roster and expenses.
func (s *TripService) DeleteTrip(ctx context.Context, req *connect.Request[DeleteTripRequest]) (*connect.Response[DeleteTripResponse], error) {
	slog.Info("DeleteTrip request received", "trip_id", req.Msg.TripID)

	if err := s.store.DeleteTrip(ctx, req.Msg.TripID); err != nil {
		slog.Error("DeleteTrip failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Trip deleted", "trip_id", req.Msg.TripID)
	s.publish(ctx, notify.NewTripEvent(req.Msg.TripID, notify.KindTripDeleted, 0))

	return connect.NewResponse(&DeleteTripResponse{Success: true}), nil
}

// SetRate changes the conversion rate. Stored ledger amounts keep the rate
// they were entered with.
func (s *TripService) SetRate(ctx context.Context, req *connect.Request[SetRateRequest]) (*connect.Response[SetRateResponse], error) {
	slog.Info("SetRate request received", "trip_id", req.Msg.TripID, "rate", req.Msg.Rate)

	rate, err := calculator.ParseRate(req.Msg.Rate)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.store.SetRate(ctx, req.Msg.TripID, rate); err != nil {
		slog.Error("SetRate failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}

	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("Failed to fetch updated trip", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}

	s.publish(ctx, notify.NewTripEvent(trip.ID, notify.KindRateChanged, 0))
	return connect.NewResponse(&SetRateResponse{Trip: toTrip(trip)}), nil
}

// AddMember appends a participant to the roster.
func (s *TripService) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[MembersResponse], error) {
	slog.Info("AddMember request received", "trip_id", req.Msg.TripID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, calculator.ErrInvalidMember)
	}

	if err := s.store.AddMember(ctx, req.Msg.TripID, name); err != nil {
		slog.Error("AddMember failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}
	return s.membersChanged(ctx, req.Msg.TripID)
}

// RemoveMember drops a participant who has not paid for any expense.
func (s *TripService) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[MembersResponse], error) {
	slog.Info("RemoveMember request received", "trip_id", req.Msg.TripID, "name", req.Msg.Name)

	if err := s.store.RemoveMember(ctx, req.Msg.TripID, strings.TrimSpace(req.Msg.Name)); err != nil {
		slog.Error("RemoveMember failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}
	return s.membersChanged(ctx, req.Msg.TripID)
}

// ClearMembers empties the roster of a trip without expenses.
func (s *TripService) ClearMembers(ctx context.Context, req *connect.Request[ClearMembersRequest]) (*connect.Response[MembersResponse], error) {
	slog.Info("ClearMembers request received", "trip_id", req.Msg.TripID)

	if err := s.store.ClearMembers(ctx, req.Msg.TripID); err != nil {
		slog.Error("ClearMembers failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, storeError(err)
	}
	return s.membersChanged(ctx, req.Msg.TripID)
}

func (s *TripService) membersChanged(ctx context.Context, tripID string) (*connect.Response[MembersResponse], error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		slog.Error("Failed to fetch updated trip", "trip_id", tripID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Roster updated", "trip_id", tripID, "members", trip.Members)
	s.publish(ctx, notify.NewTripEvent(tripID, notify.KindMembersChanged, 0))

	return connect.NewResponse(&MembersResponse{Members: trip.Members}), nil
}

// loadTrip reads a trip and its expenses in insertion order.
func (s *TripService) loadTrip(ctx context.Context, tripID string) (*models.Trip, []*models.Expense, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	return trip, expenses, nil
}

// publish sends an event. Failures are logged; the mutation already happened.
func (s *TripService) publish(ctx context.Context, event notify.TripEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("publish: failed to send trip event",
			"trip_id", event.TripID,
			"kind", event.Kind,
			"error", err,
		)
	}
}

// storeError maps storage errors onto connect codes.
func storeError(err error) *connect.Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrDuplicateMember), errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, storage.ErrMemberHasExpenses):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("storage: %w", err))
	}
}
