// Package notify broadcasts trip changes so that other devices viewing the
// same trip can refresh.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mmynk/tripsplit/internal/config"
)

// Kind names what changed on a trip.
type Kind string

const (
	KindTripCreated     Kind = "trip_created"
	KindTripDeleted     Kind = "trip_deleted"
	KindRateChanged     Kind = "rate_changed"
	KindMembersChanged  Kind = "members_changed"
	KindExpenseAdded    Kind = "expense_added"
	KindExpenseUpdated  Kind = "expense_updated"
	KindExpenseDeleted  Kind = "expense_deleted"
	KindExpensesCleared Kind = "expenses_cleared"
)

// TripEvent is the message sent after a trip mutation. It carries no
// amounts; subscribers refetch the trip.
type TripEvent struct {
	TripID    string    `json:"trip_id"`
	Kind      Kind      `json:"kind"`
	ExpenseID int64     `json:"expense_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTripEvent stamps an event with the current time.
func NewTripEvent(tripID string, kind Kind, expenseID int64) TripEvent {
	return TripEvent{
		TripID:    tripID,
		Kind:      kind,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e TripEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers trip events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event TripEvent) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, TripEvent) error { return nil }
func (Noop) Close() error                             { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []TripEvent
}

func (r *Recorder) Publish(_ context.Context, event TripEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []TripEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TripEvent, len(r.events))
	copy(out, r.events)
	return out
}

// New builds the publisher selected by cfg.NotifyBackend.
func New(ctx context.Context, cfg *config.Config) (Publisher, error) {
	switch cfg.NotifyBackend {
	case config.NotifyNone, "":
		return Noop{}, nil
	case config.NotifyAMQP:
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	case config.NotifyRedis:
		return NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisChannel)
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.NotifyBackend)
	}
}
