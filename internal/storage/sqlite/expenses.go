package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// CreateExpense persists an expense and its shares in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var seq int64
		err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(seq) + 1, 0) FROM expenses WHERE group_id = ?",
			expense.GroupID,
		).Scan(&seq)
		if err != nil {
			return fmt.Errorf("failed to get expense sequence: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, payer_id, amount, split_method, description, created_at, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.PayerID, expense.Amount.String(),
			expense.SplitMethod, expense.Description, expense.CreatedAt, seq,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for userID, amount := range expense.Shares {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_shares (expense_id, user_id, amount) VALUES (?, ?, ?)",
				expense.ID, userID, amount.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert expense share: %w", err)
			}
		}
		return nil
	})
}

// ListExpensesByGroup retrieves all expenses for a group, oldest first, with their shares.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount, split_method, description, created_at
		 FROM expenses WHERE group_id = ? ORDER BY seq`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense := &models.Expense{Shares: make(map[string]decimal.Decimal)}
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
			&expense.SplitMethod, &expense.Description, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	if len(expenses) == 0 {
		return expenses, nil
	}

	// One query for every share in the group instead of one per expense.
	shareRows, err := s.db.QueryContext(ctx,
		`SELECT es.expense_id, es.user_id, es.amount
		 FROM expense_shares es JOIN expenses e ON e.id = es.expense_id
		 WHERE e.group_id = ?`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var expenseID, userID string
		var amount decimal.Decimal
		if err := shareRows.Scan(&expenseID, &userID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		if expense, ok := byID[expenseID]; ok {
			expense.Shares[userID] = amount
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	return expenses, nil
}
