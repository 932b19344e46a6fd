package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/notify"
	"github.com/mmynk/tripsplit/internal/storage/sqlite"
)

type statusRecorder struct {
	mu       sync.Mutex
	statuses []string
}

func (r *statusRecorder) ObserveSettlement(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

type testEnv struct {
	client   *TripServiceClient
	events   *notify.Recorder
	statuses *statusRecorder
}

// setupTestServer creates a test server backed by a temporary SQLite file.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	env := &testEnv{events: &notify.Recorder{}, statuses: &statusRecorder{}}
	svc := NewTripService(store,
		WithPublisher(env.events),
		WithSettlementObserver(env.statuses),
		WithDefaultRate(decimal.NewFromInt(40)),
		WithCurrencies("KRW", "TWD"),
	)

	path, handler := NewTripServiceHandler(svc)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	env.client = NewTripServiceClient(http.DefaultClient, server.URL)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return env
}

func (env *testEnv) createTrip(t *testing.T, members ...string) *Trip {
	t.Helper()
	resp, err := env.client.CreateTrip(context.Background(), connect.NewRequest(&CreateTripRequest{
		Name:    "Seoul",
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	return resp.Msg.Trip
}

func (env *testEnv) addExpense(t *testing.T, req *AddExpenseRequest) *Expense {
	t.Helper()
	if req.Currency == "" {
		req.Currency = "ledger"
	}
	if req.Item == "" {
		req.Item = "Dinner"
	}
	resp, err := env.client.AddExpense(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Errorf("expected %v, got %v (%v)", code, got, err)
	}
}

func TestCreateTrip(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	trip := env.createTrip(t, " Amy ", "Ben")
	if trip.ID == "" {
		t.Error("expected trip ID")
	}
	if !slices.Equal(trip.Members, []string{"Amy", "Ben"}) {
		t.Errorf("Members = %v, want trimmed [Amy Ben]", trip.Members)
	}
	if !trip.Rate.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Rate = %s, want default 40", trip.Rate)
	}

	tests := []struct {
		name string
		req  *CreateTripRequest
		code connect.Code
	}{
		{"blank name", &CreateTripRequest{Name: "  "}, connect.CodeInvalidArgument},
		{"duplicate members", &CreateTripRequest{Name: "X", Members: []string{"Amy", "Amy"}}, connect.CodeInvalidArgument},
		{"blank member", &CreateTripRequest{Name: "X", Members: []string{""}}, connect.CodeInvalidArgument},
		{"negative rate", &CreateTripRequest{Name: "X", Rate: -1}, connect.CodeInvalidArgument},
		{"taken id", &CreateTripRequest{ID: trip.ID, Name: "X"}, connect.CodeAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.client.CreateTrip(ctx, connect.NewRequest(tt.req))
			wantCode(t, err, tt.code)
		})
	}

	list, err := env.client.ListTrips(ctx, connect.NewRequest(&ListTripsRequest{}))
	if err != nil {
		t.Fatalf("ListTrips failed: %v", err)
	}
	if len(list.Msg.Trips) != 1 {
		t.Errorf("ListTrips returned %d trips, want 1", len(list.Msg.Trips))
	}

	_, err = env.client.GetTrip(ctx, connect.NewRequest(&GetTripRequest{TripID: "missing"}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestRoster(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.createTrip(t, "Amy")

	resp, err := env.client.AddMember(ctx, connect.NewRequest(&AddMemberRequest{TripID: trip.ID, Name: " Ben "}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if !slices.Equal(resp.Msg.Members, []string{"Amy", "Ben"}) {
		t.Errorf("Members = %v", resp.Msg.Members)
	}

	_, err = env.client.AddMember(ctx, connect.NewRequest(&AddMemberRequest{TripID: trip.ID, Name: "Amy"}))
	wantCode(t, err, connect.CodeAlreadyExists)

	_, err = env.client.AddMember(ctx, connect.NewRequest(&AddMemberRequest{TripID: trip.ID, Name: "   "}))
	wantCode(t, err, connect.CodeInvalidArgument)

	env.addExpense(t, &AddExpenseRequest{TripID: trip.ID, Payer: "Amy", OriginalAmount: decimal.NewFromInt(100)})

	_, err = env.client.RemoveMember(ctx, connect.NewRequest(&RemoveMemberRequest{TripID: trip.ID, Name: "Amy"}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.client.ClearMembers(ctx, connect.NewRequest(&ClearMembersRequest{TripID: trip.ID}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	resp, err = env.client.RemoveMember(ctx, connect.NewRequest(&RemoveMemberRequest{TripID: trip.ID, Name: "Ben"}))
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if !slices.Equal(resp.Msg.Members, []string{"Amy"}) {
		t.Errorf("Members = %v, want [Amy]", resp.Msg.Members)
	}

	if _, err := env.client.ClearExpenses(ctx, connect.NewRequest(&ClearExpensesRequest{TripID: trip.ID})); err != nil {
		t.Fatalf("ClearExpenses failed: %v", err)
	}
	resp, err = env.client.ClearMembers(ctx, connect.NewRequest(&ClearMembersRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("ClearMembers failed: %v", err)
	}
	if len(resp.Msg.Members) != 0 {
		t.Errorf("Members = %v, want empty", resp.Msg.Members)
	}
}

func TestAddExpenseValidation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.createTrip(t, "Amy", "Ben", "Cid")

	tests := []struct {
		name string
		req  *AddExpenseRequest
	}{
		{"payer not on roster", &AddExpenseRequest{Payer: "Dan", OriginalAmount: decimal.NewFromInt(10), Currency: "ledger", Item: "Taxi"}},
		{"zero amount", &AddExpenseRequest{Payer: "Amy", OriginalAmount: decimal.Zero, Currency: "ledger", Item: "Taxi"}},
		{"negative amount", &AddExpenseRequest{Payer: "Amy", OriginalAmount: decimal.NewFromInt(-5), Currency: "ledger", Item: "Taxi"}},
		{"rounds to zero", &AddExpenseRequest{Payer: "Amy", OriginalAmount: decimal.RequireFromString("0.4"), Currency: "ledger", Item: "Gum"}},
		{"unknown currency", &AddExpenseRequest{Payer: "Amy", OriginalAmount: decimal.NewFromInt(10), Currency: "EUR", Item: "Taxi"}},
		{"blank item", &AddExpenseRequest{Payer: "Amy", OriginalAmount: decimal.NewFromInt(10), Currency: "ledger", Item: " "}},
		{"subset outsider", &AddExpenseRequest{Payer: "Amy", OriginalAmount: decimal.NewFromInt(10), Currency: "ledger", Item: "Taxi", SplitBy: []string{"Amy", "Dan"}}},
		{"subset duplicate", &AddExpenseRequest{Payer: "Amy", OriginalAmount: decimal.NewFromInt(10), Currency: "ledger", Item: "Taxi", SplitBy: []string{"Ben", "Ben"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.TripID = trip.ID
			_, err := env.client.AddExpense(ctx, connect.NewRequest(tt.req))
			wantCode(t, err, connect.CodeInvalidArgument)
		})
	}

	_, err := env.client.AddExpense(ctx, connect.NewRequest(&AddExpenseRequest{
		TripID: "missing", Payer: "Amy", OriginalAmount: decimal.NewFromInt(10), Currency: "ledger", Item: "Taxi",
	}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestExpenseConversion(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.createTrip(t, "Amy", "Ben")

	if _, err := env.client.SetRate(ctx, connect.NewRequest(&SetRateRequest{TripID: trip.ID, Rate: 42.5})); err != nil {
		t.Fatalf("SetRate failed: %v", err)
	}

	// 2.5 * 42.5 = 106.25
	e := env.addExpense(t, &AddExpenseRequest{
		TripID: trip.ID, Payer: "Amy", OriginalAmount: decimal.RequireFromString("2.5"), Currency: "secondary",
	})
	if e.Amount != 106 {
		t.Errorf("Amount = %d, want 106", e.Amount)
	}
	if e.SecondaryAmount != 2 {
		t.Errorf("SecondaryAmount = %d, want 2", e.SecondaryAmount)
	}

	// Changing the rate leaves stored amounts alone
	if _, err := env.client.SetRate(ctx, connect.NewRequest(&SetRateRequest{TripID: trip.ID, Rate: 50})); err != nil {
		t.Fatalf("SetRate failed: %v", err)
	}
	got, err := env.client.GetTrip(ctx, connect.NewRequest(&GetTripRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("GetTrip failed: %v", err)
	}
	if got.Msg.Expenses[0].Amount != 106 {
		t.Errorf("stored Amount = %d after rate change, want 106", got.Msg.Expenses[0].Amount)
	}
	if got.Msg.Currencies.Secondary != "TWD" {
		t.Errorf("Currencies = %+v", got.Msg.Currencies)
	}

	// Editing re-derives with the current rate
	updated, err := env.client.UpdateExpense(ctx, connect.NewRequest(&UpdateExpenseRequest{
		TripID: trip.ID, ExpenseID: e.ID, Payer: "Ben",
		OriginalAmount: decimal.RequireFromString("2.5"), Currency: "secondary", Item: "Snacks",
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if updated.Msg.Expense.Amount != 125 {
		t.Errorf("Amount = %d after edit, want 125", updated.Msg.Expense.Amount)
	}
	if updated.Msg.Expense.ID != e.ID || updated.Msg.Expense.Date != e.Date {
		t.Errorf("edit changed identity: %+v", updated.Msg.Expense)
	}

	_, err = env.client.SetRate(ctx, connect.NewRequest(&SetRateRequest{TripID: trip.ID, Rate: 0}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.client.UpdateExpense(ctx, connect.NewRequest(&UpdateExpenseRequest{
		TripID: trip.ID, ExpenseID: 1, Payer: "Ben",
		OriginalAmount: decimal.NewFromInt(1), Currency: "ledger", Item: "Snacks",
	}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestGetSettlement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	t.Run("need more participants", func(t *testing.T) {
		trip := env.createTrip(t, "Amy")
		resp, err := env.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{TripID: trip.ID}))
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if resp.Msg.Status != "need_more_participants" {
			t.Errorf("Status = %q", resp.Msg.Status)
		}
	})

	t.Run("no expenses", func(t *testing.T) {
		trip := env.createTrip(t, "Amy", "Ben")
		resp, err := env.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{TripID: trip.ID}))
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if resp.Msg.Status != "no_expenses" || len(resp.Msg.Transfers) != 0 {
			t.Errorf("got %+v", resp.Msg)
		}
	})

	t.Run("subset split", func(t *testing.T) {
		trip := env.createTrip(t, "Amy", "Ben", "Cid")
		env.addExpense(t, &AddExpenseRequest{TripID: trip.ID, Payer: "Amy", OriginalAmount: decimal.NewFromInt(300), Item: "Hotel"})
		env.addExpense(t, &AddExpenseRequest{TripID: trip.ID, Payer: "Ben", OriginalAmount: decimal.NewFromInt(60), Item: "Taxi", SplitBy: []string{"Ben", "Cid"}})

		resp, err := env.client.GetSettlement(ctx, connect.NewRequest(&GetSettlementRequest{TripID: trip.ID}))
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if resp.Msg.Status != "calculated" {
			t.Fatalf("Status = %q", resp.Msg.Status)
		}

		want := []Transfer{
			{From: "Cid", To: "Amy", Amount: 130, SecondaryAmount: 3},
			{From: "Ben", To: "Amy", Amount: 70, SecondaryAmount: 2},
		}
		if len(resp.Msg.Transfers) != len(want) {
			t.Fatalf("got %d transfers, want %d: %+v", len(resp.Msg.Transfers), len(want), resp.Msg.Transfers)
		}
		for i, w := range want {
			if *resp.Msg.Transfers[i] != w {
				t.Errorf("transfer %d = %+v, want %+v", i, *resp.Msg.Transfers[i], w)
			}
		}

		if resp.Msg.Total != 360 || resp.Msg.Average != 120 {
			t.Errorf("Total = %d, Average = %d, want 360 and 120", resp.Msg.Total, resp.Msg.Average)
		}
		nets := map[string]int64{}
		for _, b := range resp.Msg.Balances {
			nets[b.Name] = b.Net
		}
		if nets["Amy"] != 200 || nets["Ben"] != -70 || nets["Cid"] != -130 {
			t.Errorf("balances = %v", nets)
		}
	})

	t.Run("full roster subset is stored as everyone", func(t *testing.T) {
		trip := env.createTrip(t, "Amy", "Ben")
		e := env.addExpense(t, &AddExpenseRequest{
			TripID: trip.ID, Payer: "Amy", OriginalAmount: decimal.NewFromInt(100), SplitBy: []string{"Ben", "Amy"},
		})
		if len(e.SplitBy) != 0 {
			t.Errorf("SplitBy = %v, want empty", e.SplitBy)
		}
	})

	env.statuses.mu.Lock()
	defer env.statuses.mu.Unlock()
	want := []string{"need_more_participants", "no_expenses", "calculated"}
	if !slices.Equal(env.statuses.statuses, want) {
		t.Errorf("observed statuses = %v, want %v", env.statuses.statuses, want)
	}
}

func TestSummaries(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.createTrip(t, "Amy", "Ben", "Cid")

	env.addExpense(t, &AddExpenseRequest{TripID: trip.ID, Payer: "Ben", OriginalAmount: decimal.NewFromInt(60), Item: "Taxi", SplitBy: []string{"Ben", "Cid"}})
	env.addExpense(t, &AddExpenseRequest{TripID: trip.ID, Payer: "Amy", OriginalAmount: decimal.NewFromInt(200), Item: "Hotel"})
	env.addExpense(t, &AddExpenseRequest{TripID: trip.ID, Payer: "Amy", OriginalAmount: decimal.NewFromInt(100), Item: "Museum"})

	payers, err := env.client.GetPayerSummary(ctx, connect.NewRequest(&GetPayerSummaryRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("GetPayerSummary failed: %v", err)
	}
	if len(payers.Msg.Payers) != 2 {
		t.Fatalf("got %d payers, want 2", len(payers.Msg.Payers))
	}
	amy := payers.Msg.Payers[0]
	if amy.Payer != "Amy" || amy.Total != 300 || amy.Count != 2 || len(amy.Expenses) != 2 {
		t.Errorf("first payer = %+v", amy)
	}
	if payers.Msg.Payers[1].Payer != "Ben" || payers.Msg.Payers[1].Total != 60 {
		t.Errorf("second payer = %+v", payers.Msg.Payers[1])
	}

	me, err := env.client.GetPersonalSummary(ctx, connect.NewRequest(&GetPersonalSummaryRequest{TripID: trip.ID, Name: "Amy"}))
	if err != nil {
		t.Fatalf("GetPersonalSummary failed: %v", err)
	}
	if me.Msg.Paid != 300 || me.Msg.FairShare != 120 || me.Msg.Net != 180 {
		t.Errorf("summary = %+v", me.Msg)
	}
	if me.Msg.SecondaryPaid != 8 { // 300 / 40 = 7.5
		t.Errorf("SecondaryPaid = %d, want 8", me.Msg.SecondaryPaid)
	}
	if len(me.Msg.Expenses) != 2 {
		t.Errorf("got %d expenses, want 2", len(me.Msg.Expenses))
	}

	_, err = env.client.GetPersonalSummary(ctx, connect.NewRequest(&GetPersonalSummaryRequest{TripID: trip.ID, Name: "Dan"}))
	wantCode(t, err, connect.CodeNotFound)
	_, err = env.client.GetPersonalSummary(ctx, connect.NewRequest(&GetPersonalSummaryRequest{TripID: trip.ID, Name: "amy"}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestDeleteAndEvents(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.createTrip(t, "Amy", "Ben")

	e := env.addExpense(t, &AddExpenseRequest{TripID: trip.ID, Payer: "Amy", OriginalAmount: decimal.NewFromInt(50)})
	if _, err := env.client.DeleteExpense(ctx, connect.NewRequest(&DeleteExpenseRequest{TripID: trip.ID, ExpenseID: e.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	_, err := env.client.DeleteExpense(ctx, connect.NewRequest(&DeleteExpenseRequest{TripID: trip.ID, ExpenseID: e.ID}))
	wantCode(t, err, connect.CodeNotFound)

	if _, err := env.client.DeleteTrip(ctx, connect.NewRequest(&DeleteTripRequest{TripID: trip.ID})); err != nil {
		t.Fatalf("DeleteTrip failed: %v", err)
	}
	_, err = env.client.GetTrip(ctx, connect.NewRequest(&GetTripRequest{TripID: trip.ID}))
	wantCode(t, err, connect.CodeNotFound)

	var kinds []notify.Kind
	for _, ev := range env.events.Events() {
		if ev.TripID != trip.ID {
			t.Errorf("event for unexpected trip %q", ev.TripID)
		}
		kinds = append(kinds, ev.Kind)
	}
	want := []notify.Kind{
		notify.KindTripCreated,
		notify.KindExpenseAdded,
		notify.KindExpenseDeleted,
		notify.KindTripDeleted,
	}
	if !slices.Equal(kinds, want) {
		t.Errorf("events = %v, want %v", kinds, want)
	}
}
