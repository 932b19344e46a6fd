package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// TripServiceName is the fully-qualified name of the trip service.
const TripServiceName = "tripsplit.v1.TripService"

// Procedure paths served by NewTripServiceHandler.
const (
	TripServiceCreateTripProcedure         = "/" + TripServiceName + "/CreateTrip"
	TripServiceGetTripProcedure            = "/" + TripServiceName + "/GetTrip"
	TripServiceListTripsProcedure          = "/" + TripServiceName + "/ListTrips"
	TripServiceDeleteTripProcedure         = "/" + TripServiceName + "/DeleteTrip"
	TripServiceSetRateProcedure            = "/" + TripServiceName + "/SetRate"
	TripServiceAddMemberProcedure          = "/" + TripServiceName + "/AddMember"
	TripServiceRemoveMemberProcedure       = "/" + TripServiceName + "/RemoveMember"
	TripServiceClearMembersProcedure       = "/" + TripServiceName + "/ClearMembers"
	TripServiceAddExpenseProcedure         = "/" + TripServiceName + "/AddExpense"
	TripServiceUpdateExpenseProcedure      = "/" + TripServiceName + "/UpdateExpense"
	TripServiceDeleteExpenseProcedure      = "/" + TripServiceName + "/DeleteExpense"
	TripServiceClearExpensesProcedure      = "/" + TripServiceName + "/ClearExpenses"
	TripServiceGetSettlementProcedure      = "/" + TripServiceName + "/GetSettlement"
	TripServiceGetPayerSummaryProcedure    = "/" + TripServiceName + "/GetPayerSummary"
	TripServiceGetPersonalSummaryProcedure = "/" + TripServiceName + "/GetPersonalSummary"
)

// NewTripServiceHandler builds an HTTP handler for every TripService
// procedure. It returns the path prefix to mount the handler on.
func NewTripServiceHandler(svc *TripService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(TripServiceCreateTripProcedure, connect.NewUnaryHandler(TripServiceCreateTripProcedure, svc.CreateTrip, opts...))
	mux.Handle(TripServiceGetTripProcedure, connect.NewUnaryHandler(TripServiceGetTripProcedure, svc.GetTrip, opts...))
	mux.Handle(TripServiceListTripsProcedure, connect.NewUnaryHandler(TripServiceListTripsProcedure, svc.ListTrips, opts...))
	mux.Handle(TripServiceDeleteTripProcedure, connect.NewUnaryHandler(TripServiceDeleteTripProcedure, svc.DeleteTrip, opts...))
	mux.Handle(TripServiceSetRateProcedure, connect.NewUnaryHandler(TripServiceSetRateProcedure, svc.SetRate, opts...))
	mux.Handle(TripServiceAddMemberProcedure, connect.NewUnaryHandler(TripServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(TripServiceRemoveMemberProcedure, connect.NewUnaryHandler(TripServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(TripServiceClearMembersProcedure, connect.NewUnaryHandler(TripServiceClearMembersProcedure, svc.ClearMembers, opts...))
	mux.Handle(TripServiceAddExpenseProcedure, connect.NewUnaryHandler(TripServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(TripServiceUpdateExpenseProcedure, connect.NewUnaryHandler(TripServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(TripServiceDeleteExpenseProcedure, connect.NewUnaryHandler(TripServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(TripServiceClearExpensesProcedure, connect.NewUnaryHandler(TripServiceClearExpensesProcedure, svc.ClearExpenses, opts...))
	mux.Handle(TripServiceGetSettlementProcedure, connect.NewUnaryHandler(TripServiceGetSettlementProcedure, svc.GetSettlement, opts...))
	mux.Handle(TripServiceGetPayerSummaryProcedure, connect.NewUnaryHandler(TripServiceGetPayerSummaryProcedure, svc.GetPayerSummary, opts...))
	mux.Handle(TripServiceGetPersonalSummaryProcedure, connect.NewUnaryHandler(TripServiceGetPersonalSummaryProcedure, svc.GetPersonalSummary, opts...))

	return "/" + TripServiceName + "/", mux
}

// TripServiceClient calls a TripService over HTTP with the JSON codec.
type TripServiceClient struct {
	createTrip         *connect.Client[CreateTripRequest, CreateTripResponse]
	getTrip            *connect.Client[GetTripRequest, GetTripResponse]
	listTrips          *connect.Client[ListTripsRequest, ListTripsResponse]
	deleteTrip         *connect.Client[DeleteTripRequest, DeleteTripResponse]
	setRate            *connect.Client[SetRateRequest, SetRateResponse]
	addMember          *connect.Client[AddMemberRequest, MembersResponse]
	removeMember       *connect.Client[RemoveMemberRequest, MembersResponse]
	clearMembers       *connect.Client[ClearMembersRequest, MembersResponse]
	addExpense         *connect.Client[AddExpenseRequest, ExpenseResponse]
	updateExpense      *connect.Client[UpdateExpenseRequest, ExpenseResponse]
	deleteExpense      *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	clearExpenses      *connect.Client[ClearExpensesRequest, ClearExpensesResponse]
	getSettlement      *connect.Client[GetSettlementRequest, GetSettlementResponse]
	getPayerSummary    *connect.Client[GetPayerSummaryRequest, GetPayerSummaryResponse]
	getPersonalSummary *connect.Client[GetPersonalSummaryRequest, GetPersonalSummaryResponse]
}

// NewTripServiceClient constructs a client for the service at baseURL
// (e.g., "http://localhost:8080").
func NewTripServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TripServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &TripServiceClient{
		createTrip:         connect.NewClient[CreateTripRequest, CreateTripResponse](httpClient, baseURL+TripServiceCreateTripProcedure, opts...),
		getTrip:            connect.NewClient[GetTripRequest, GetTripResponse](httpClient, baseURL+TripServiceGetTripProcedure, opts...),
		listTrips:          connect.NewClient[ListTripsRequest, ListTripsResponse](httpClient, baseURL+TripServiceListTripsProcedure, opts...),
		deleteTrip:         connect.NewClient[DeleteTripRequest, DeleteTripResponse](httpClient, baseURL+TripServiceDeleteTripProcedure, opts...),
		setRate:            connect.NewClient[SetRateRequest, SetRateResponse](httpClient, baseURL+TripServiceSetRateProcedure, opts...),
		addMember:          connect.NewClient[AddMemberRequest, MembersResponse](httpClient, baseURL+TripServiceAddMemberProcedure, opts...),
		removeMember:       connect.NewClient[RemoveMemberRequest, MembersResponse](httpClient, baseURL+TripServiceRemoveMemberProcedure, opts...),
		clearMembers:       connect.NewClient[ClearMembersRequest, MembersResponse](httpClient, baseURL+TripServiceClearMembersProcedure, opts...),
		addExpense:         connect.NewClient[AddExpenseRequest, ExpenseResponse](httpClient, baseURL+TripServiceAddExpenseProcedure, opts...),
		updateExpense:      connect.NewClient[UpdateExpenseRequest, ExpenseResponse](httpClient, baseURL+TripServiceUpdateExpenseProcedure, opts...),
		deleteExpense:      connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+TripServiceDeleteExpenseProcedure, opts...),
		clearExpenses:      connect.NewClient[ClearExpensesRequest, ClearExpensesResponse](httpClient, baseURL+TripServiceClearExpensesProcedure, opts...),
		getSettlement:      connect.NewClient[GetSettlementRequest, GetSettlementResponse](httpClient, baseURL+TripServiceGetSettlementProcedure, opts...),
		getPayerSummary:    connect.NewClient[GetPayerSummaryRequest, GetPayerSummaryResponse](httpClient, baseURL+TripServiceGetPayerSummaryProcedure, opts...),
		getPersonalSummary: connect.NewClient[GetPersonalSummaryRequest, GetPersonalSummaryResponse](httpClient, baseURL+TripServiceGetPersonalSummaryProcedure, opts...),
	}
}

func (c *TripServiceClient) CreateTrip(ctx context.Context, req *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetTrip(ctx context.Context, req *connect.Request[GetTripRequest]) (*connect.Response[GetTripResponse], error) {
	return c.getTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) ListTrips(ctx context.Context, req *connect.Request[ListTripsRequest]) (*connect.Response[ListTripsResponse], error) {
	return c.listTrips.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteTrip(ctx context.Context, req *connect.Request[DeleteTripRequest]) (*connect.Response[DeleteTripResponse], error) {
	return c.deleteTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) SetRate(ctx context.Context, req *connect.Request[SetRateRequest]) (*connect.Response[SetRateResponse], error) {
	return c.setRate.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[MembersResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *TripServiceClient) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[MembersResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *TripServiceClient) ClearMembers(ctx context.Context, req *connect.Request[ClearMembersRequest]) (*connect.Response[MembersResponse], error) {
	return c.clearMembers.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *TripServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *TripServiceClient) ClearExpenses(ctx context.Context, req *connect.Request[ClearExpensesRequest]) (*connect.Response[ClearExpensesResponse], error) {
	return c.clearExpenses.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetPayerSummary(ctx context.Context, req *connect.Request[GetPayerSummaryRequest]) (*connect.Response[GetPayerSummaryResponse], error) {
	return c.getPayerSummary.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetPersonalSummary(ctx context.Context, req *connect.Request[GetPersonalSummaryRequest]) (*connect.Response[GetPersonalSummaryResponse], error) {
	return c.getPersonalSummary.CallUnary(ctx, req)
}
