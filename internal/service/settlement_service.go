package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	ledger *ledger.Ledger
}

// NewSettlementService creates a new SettlementService over the given ledger.
func NewSettlementService(l *ledger.Ledger) *SettlementService {
	return &SettlementService{ledger: l}
}

// GetBalances returns every member's net balance in member order.
func (s *SettlementService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	group, balances, err := s.ledger.Balances(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	names, err := s.ledger.DisplayNames(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances: toAPIBalances(group.Members, balances, names),
		Settled:  balances.IsSettled(),
	}), nil
}

// SuggestSettlements returns the transfers that settle the group and the
// balances that would remain after them.
func (s *SettlementService) SuggestSettlements(ctx context.Context, req *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error) {
	slog.Info("SuggestSettlements request received", "group_id", req.Msg.GroupID)

	plan, err := s.ledger.Plan(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("SuggestSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	names, err := s.ledger.DisplayNames(ctx, plan.Group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("SuggestSettlements successful", "group_id", req.Msg.GroupID, "transfers", len(plan.Suggestions))
	return connect.NewResponse(&api.SuggestSettlementsResponse{
		Suggestions:   toAPITransfers(plan.Suggestions, names),
		BalancesAfter: toAPIBalances(plan.Group.Members, plan.After, names),
	}), nil
}

// RecordSettlement records a real payment. The caller's identity, when
// authenticated, is stored as the creator.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromUserID,
		"to", req.Msg.ToUserID,
		"amount", req.Msg.Amount.String(),
	)

	settlement, err := s.ledger.RecordSettlement(ctx, ledger.SettlementInput{
		GroupID:    req.Msg.GroupID,
		FromUserID: req.Msg.FromUserID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     req.Msg.Amount,
		CreatedBy:  middleware.GetUserID(ctx),
		Note:       req.Msg.Note,
	})
	if err != nil {
		slog.Error("RecordSettlement failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// AcceptSuggestions records every current suggestion as a settlement.
func (s *SettlementService) AcceptSuggestions(ctx context.Context, req *connect.Request[api.AcceptSuggestionsRequest]) (*connect.Response[api.AcceptSuggestionsResponse], error) {
	slog.Info("AcceptSuggestions request received", "group_id", req.Msg.GroupID)

	settlements, err := s.ledger.AcceptSuggestions(ctx, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		slog.Error("AcceptSuggestions failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("AcceptSuggestions successful", "group_id", req.Msg.GroupID, "recorded", len(settlements))
	return connect.NewResponse(&api.AcceptSuggestionsResponse{Settlements: toAPISettlements(settlements)}), nil
}

// ListSettlements returns a group's recorded settlements, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	settlements, err := s.ledger.ListSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}
