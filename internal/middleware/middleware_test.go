package middleware

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type ping struct{}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	}
	failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("trip missing"))
	}

	ctx := context.Background()
	interceptor := m.Interceptor()
	interceptor(ok)(ctx, connect.NewRequest(&ping{}))
	interceptor(ok)(ctx, connect.NewRequest(&ping{}))
	if _, err := interceptor(failing)(ctx, connect.NewRequest(&ping{})); connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("interceptor changed the error: %v", err)
	}

	// Requests built outside a client have an empty procedure
	if got := testutil.ToFloat64(m.requests.WithLabelValues("", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("", "not_found")); got != 1 {
		t.Errorf("not_found count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestObserveSettlement(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveSettlement("calculated")
	m.ObserveSettlement("calculated")
	m.ObserveSettlement("no_expenses")

	if got := testutil.ToFloat64(m.settlements.WithLabelValues("calculated")); got != 2 {
		t.Errorf("calculated = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.settlements.WithLabelValues("no_expenses")); got != 1 {
		t.Errorf("no_expenses = %v, want 1", got)
	}
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	want := connect.NewError(connect.CodeInvalidArgument, errors.New("bad amount"))
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, want
	}

	_, err := LoggingInterceptor()(next)(context.Background(), connect.NewRequest(&ping{}))
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
