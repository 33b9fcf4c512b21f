package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/models"
)

// Plan is a snapshot of a group's balances and the transfers that settle them.
type Plan struct {
	Group       *models.Group
	Balances    calculator.Balances[string]
	Suggestions []calculator.Transfer[string]

	// After is Balances with every suggestion applied. Every member ends within
	// one cent of zero, except one-cent debts gathered on one side.
	After calculator.Balances[string]
}

// Balances computes the current net position of every member of a group.
func (l *Ledger) Balances(ctx context.Context, groupID string) (*models.Group, calculator.Balances[string], error) {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	balances, err := l.computeBalances(ctx, group)
	if err != nil {
		return nil, nil, err
	}
	return group, balances, nil
}

func (l *Ledger) computeBalances(ctx context.Context, group *models.Group) (calculator.Balances[string], error) {
	start := time.Now()

	expenses, err := l.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	history, err := l.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	balances, err := calculator.ComputeBalances(group.Members, toCalculatorExpenses(expenses), toCalculatorSettlements(history))
	if l.metrics != nil {
		l.metrics.observeComputation(time.Since(start), err)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Balance computation failed", "group_id", group.ID, "error", err)
		return nil, err
	}
	return balances, nil
}

// Plan computes balances, suggested transfers and the simulated result of
// applying them.
func (l *Ledger) Plan(ctx context.Context, groupID string) (*Plan, error) {
	group, balances, err := l.Balances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	suggestions, err := calculator.SuggestSettlements(balances)
	if err != nil {
		slog.ErrorContext(ctx, "Settlement planning failed", "group_id", group.ID, "error", err)
		return nil, err
	}

	after, err := calculator.Simulate(balances, suggestions)
	if err != nil {
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.setGroupState(group.ID, balances, len(suggestions))
	}
	return &Plan{Group: group, Balances: balances, Suggestions: suggestions, After: after}, nil
}

// SettlementInput describes a real payment between two members.
type SettlementInput struct {
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	CreatedBy  string
	Note       string
}

// RecordSettlement persists a payment and announces it.
func (l *Ledger) RecordSettlement(ctx context.Context, in SettlementInput) (*models.Settlement, error) {
	group, err := l.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	settlement, err := l.newSettlement(group, in)
	if err != nil {
		return nil, err
	}
	if err := l.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}

	l.recorded(ctx, settlement)
	return settlement, nil
}

// AcceptSuggestions records every currently suggested transfer as a settlement,
// atomically. Afterwards no member is left more than a cent away from zero,
// except one-cent debts gathered on one side.
func (l *Ledger) AcceptSuggestions(ctx context.Context, groupID, createdBy string) ([]*models.Settlement, error) {
	plan, err := l.Plan(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(plan.Suggestions) == 0 {
		return []*models.Settlement{}, nil
	}

	settlements := make([]*models.Settlement, 0, len(plan.Suggestions))
	for _, t := range plan.Suggestions {
		s, err := l.newSettlement(plan.Group, SettlementInput{
			GroupID:    groupID,
			FromUserID: t.From,
			ToUserID:   t.To,
			Amount:     t.Amount,
			CreatedBy:  createdBy,
			Note:       "suggested settlement",
		})
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	if err := l.store.CreateSettlements(ctx, settlements); err != nil {
		return nil, err
	}

	for _, s := range settlements {
		l.recorded(ctx, s)
	}
	return settlements, nil
}

// ListSettlements returns a group's recorded settlements, newest first.
func (l *Ledger) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListSettlementsByGroup(ctx, groupID)
}

func (l *Ledger) newSettlement(group *models.Group, in SettlementInput) (*models.Settlement, error) {
	if !group.HasMember(in.FromUserID) {
		return nil, invalidf("debtor %s is not a member of group %s", in.FromUserID, group.ID)
	}
	if !group.HasMember(in.ToUserID) {
		return nil, invalidf("creditor %s is not a member of group %s", in.ToUserID, group.ID)
	}
	if in.FromUserID == in.ToUserID {
		return nil, invalidf("debtor and creditor must differ")
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, invalidf("amount must be positive, got %s", in.Amount)
	}

	return &models.Settlement{
		GroupID:    group.ID,
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		Amount:     amount,
		CreatedAt:  l.now().Unix(),
		CreatedBy:  in.CreatedBy,
		Note:       strings.TrimSpace(in.Note),
	}, nil
}

// recorded runs the side effects of a persisted settlement. Publishing is
// best effort: the settlement is already committed.
func (l *Ledger) recorded(ctx context.Context, s *models.Settlement) {
	slog.InfoContext(ctx, "Settlement recorded",
		"group_id", s.GroupID,
		"settlement_id", s.ID,
		"from", s.FromUserID,
		"to", s.ToUserID,
		"amount", s.Amount.StringFixed(2),
	)

	if l.metrics != nil {
		l.metrics.settlementsRecorded.Inc()
		l.metrics.settledAmount.Add(s.Amount.InexactFloat64())
	}

	err := l.publisher.PublishSettlementRecorded(ctx, &events.SettlementRecordedMessage{
		SettlementID: s.ID,
		GroupID:      s.GroupID,
		FromUserID:   s.FromUserID,
		ToUserID:     s.ToUserID,
		Amount:       s.Amount,
		CreatedBy:    s.CreatedBy,
		Timestamp:    time.Unix(s.CreatedAt, 0).UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to publish settlement event", "settlement_id", s.ID, "error", err)
		if l.metrics != nil {
			l.metrics.publishFailures.Inc()
		}
	}
}

func toCalculatorExpenses(expenses []*models.Expense) []calculator.Expense[string] {
	out := make([]calculator.Expense[string], len(expenses))
	for i, e := range expenses {
		out[i] = calculator.Expense[string]{Payer: e.PayerID, Amount: e.Amount, Shares: e.Shares}
	}
	return out
}

func toCalculatorSettlements(settlements []*models.Settlement) []calculator.Settlement[string] {
	out := make([]calculator.Settlement[string], len(settlements))
	for i, s := range settlements {
		out[i] = calculator.Settlement[string]{From: s.FromUserID, To: s.ToUserID, Amount: s.Amount}
	}
	return out
}
