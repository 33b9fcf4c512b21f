package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "settleup.v1.SettlementService"

// Procedure paths, usable for routing and interceptors.
const (
	SettlementServiceGetBalancesProcedure        = "/settleup.v1.SettlementService/GetBalances"
	SettlementServiceSuggestSettlementsProcedure = "/settleup.v1.SettlementService/SuggestSettlements"
	SettlementServiceRecordSettlementProcedure   = "/settleup.v1.SettlementService/RecordSettlement"
	SettlementServiceAcceptSuggestionsProcedure  = "/settleup.v1.SettlementService/AcceptSuggestions"
	SettlementServiceListSettlementsProcedure    = "/settleup.v1.SettlementService/ListSettlements"
)

// SettlementServiceHandler reports balances and records settlements.
type SettlementServiceHandler interface {
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	SuggestSettlements(context.Context, *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error)
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	AcceptSuggestions(context.Context, *connect.Request[api.AcceptSuggestionsRequest]) (*connect.Response[api.AcceptSuggestionsResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getBalances := connect.NewUnaryHandler(SettlementServiceGetBalancesProcedure, svc.GetBalances, append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...)
	suggestSettlements := connect.NewUnaryHandler(SettlementServiceSuggestSettlementsProcedure, svc.SuggestSettlements, append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...)
	recordSettlement := connect.NewUnaryHandler(SettlementServiceRecordSettlementProcedure, svc.RecordSettlement, opts...)
	acceptSuggestions := connect.NewUnaryHandler(SettlementServiceAcceptSuggestionsProcedure, svc.AcceptSuggestions, opts...)
	listSettlements := connect.NewUnaryHandler(SettlementServiceListSettlementsProcedure, svc.ListSettlements, append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...)
	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceGetBalancesProcedure:
			getBalances.ServeHTTP(w, r)
		case SettlementServiceSuggestSettlementsProcedure:
			suggestSettlements.ServeHTTP(w, r)
		case SettlementServiceRecordSettlementProcedure:
			recordSettlement.ServeHTTP(w, r)
		case SettlementServiceAcceptSuggestionsProcedure:
			acceptSuggestions.ServeHTTP(w, r)
		case SettlementServiceListSettlementsProcedure:
			listSettlements.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SettlementServiceClient is a client for the SettlementService.
type SettlementServiceClient interface {
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	SuggestSettlements(context.Context, *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error)
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	AcceptSuggestions(context.Context, *connect.Request[api.AcceptSuggestionsRequest]) (*connect.Response[api.AcceptSuggestionsResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewSettlementServiceClient constructs a client for the SettlementService. baseURL is the server's
// scheme and host, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &settlementServiceClient{
		getBalances:        connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+SettlementServiceGetBalancesProcedure, opts...),
		suggestSettlements: connect.NewClient[api.SuggestSettlementsRequest, api.SuggestSettlementsResponse](httpClient, baseURL+SettlementServiceSuggestSettlementsProcedure, opts...),
		recordSettlement:   connect.NewClient[api.RecordSettlementRequest, api.RecordSettlementResponse](httpClient, baseURL+SettlementServiceRecordSettlementProcedure, opts...),
		acceptSuggestions:  connect.NewClient[api.AcceptSuggestionsRequest, api.AcceptSuggestionsResponse](httpClient, baseURL+SettlementServiceAcceptSuggestionsProcedure, opts...),
		listSettlements:    connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+SettlementServiceListSettlementsProcedure, opts...),
	}
}

type settlementServiceClient struct {
	getBalances        *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	suggestSettlements *connect.Client[api.SuggestSettlementsRequest, api.SuggestSettlementsResponse]
	recordSettlement   *connect.Client[api.RecordSettlementRequest, api.RecordSettlementResponse]
	acceptSuggestions  *connect.Client[api.AcceptSuggestionsRequest, api.AcceptSuggestionsResponse]
	listSettlements    *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
}

func (c *settlementServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *settlementServiceClient) SuggestSettlements(ctx context.Context, req *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error) {
	return c.suggestSettlements.CallUnary(ctx, req)
}

func (c *settlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) AcceptSuggestions(ctx context.Context, req *connect.Request[api.AcceptSuggestionsRequest]) (*connect.Response[api.AcceptSuggestionsResponse], error) {
	return c.acceptSuggestions.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}
