package models

import "github.com/shopspring/decimal"

// Expense represents one payment made by a member on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the user who fronted the money.
	PayerID string

	// Amount is the total paid.
	Amount decimal.Decimal

	// SplitMethod records how Shares were derived ("equal", "percentage", "custom").
	// Informational only: balances are computed from Shares.
	SplitMethod string

	// Shares maps each participant's user ID to the amount they owe.
	Shares map[string]decimal.Decimal

	// Description is an optional note (e.g., "Dinner", "Taxi to airport").
	Description string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
