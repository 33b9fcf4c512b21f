package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

// ExpenseInput describes an expense before its shares are resolved.
type ExpenseInput struct {
	GroupID string
	PayerID string
	Amount  decimal.Decimal
	Method  calculator.SplitMethod

	// Participants is used by the equal split. Empty means every group member.
	Participants []string

	// Weights holds percentages (percentage split) or owed amounts (custom split).
	Weights map[string]decimal.Decimal

	Description string
}

// AddExpense resolves the shares of in and persists the expense.
func (l *Ledger) AddExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	group, err := l.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(in.PayerID) {
		return nil, invalidf("payer %s is not a member of group %s", in.PayerID, group.ID)
	}
	if !in.Amount.IsPositive() {
		return nil, invalidf("amount must be positive, got %s", in.Amount)
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return nil, invalidf("amount %s has more than two decimal places", in.Amount)
	}

	participants := in.Participants
	if in.Method == calculator.SplitEqual && len(participants) == 0 {
		participants = group.Members
	}
	involved := participants
	if in.Method != calculator.SplitEqual {
		involved = slices.Sorted(maps.Keys(in.Weights))
	}
	for _, id := range involved {
		if !group.HasMember(id) {
			return nil, invalidf("participant %s is not a member of group %s", id, group.ID)
		}
	}

	shares, err := calculator.Split(in.Method, in.Amount, participants, in.Weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     in.PayerID,
		Amount:      in.Amount.Round(2),
		SplitMethod: string(in.Method),
		Shares:      shares,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   l.now().Unix(),
	}
	if err := l.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.expensesAdded.WithLabelValues(expense.SplitMethod).Inc()
	}
	slog.InfoContext(ctx, "Expense added",
		"group_id", group.ID,
		"expense_id", expense.ID,
		"amount", expense.Amount.StringFixed(2),
		"split", expense.SplitMethod,
	)
	return expense, nil
}

// ListExpenses returns a group's expenses in recorded order.
func (l *Ledger) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListExpensesByGroup(ctx, groupID)
}
