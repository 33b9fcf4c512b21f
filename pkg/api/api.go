// Package api defines the request and response messages of the settleup RPC
// API. Messages travel as JSON; money is a decimal string ("12.50").
package api

import "github.com/shopspring/decimal"

// User is a registered person.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// Group is a set of members sharing expenses.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

// Expense is one payment with the resolved share of every participant.
type Expense struct {
	ID          string                     `json:"id"`
	GroupID     string                     `json:"group_id"`
	PayerID     string                     `json:"payer_id"`
	Amount      decimal.Decimal            `json:"amount"`
	SplitMethod string                     `json:"split_method"`
	Shares      map[string]decimal.Decimal `json:"shares"`
	Description string                     `json:"description,omitempty"`
	CreatedAt   int64                      `json:"created_at"`
}

// Balance is a member's net position. Positive means they are owed money.
type Balance struct {
	UserID      string          `json:"user_id"`
	DisplayName string          `json:"display_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// Transfer is a suggested payment.
type Transfer struct {
	FromUserID string          `json:"from_user_id"`
	FromName   string          `json:"from_name"`
	ToUserID   string          `json:"to_user_id"`
	ToName     string          `json:"to_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// Settlement is a recorded payment between two members.
type Settlement struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"group_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  int64           `json:"created_at"`
	CreatedBy  string          `json:"created_by,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// AuthService

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// GroupService

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type RemoveMemberResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

// ExpenseService

type AddExpenseRequest struct {
	GroupID string          `json:"group_id"`
	PayerID string          `json:"payer_id"`
	Amount  decimal.Decimal `json:"amount"`

	// SplitMethod is "equal", "percentage" or "custom".
	SplitMethod string `json:"split_method"`

	// Participants of an equal split. Empty means the whole group.
	Participants []string `json:"participants,omitempty"`

	// Weights are percentages (percentage split) or owed amounts (custom split).
	Weights map[string]decimal.Decimal `json:"weights,omitempty"`

	Description string `json:"description,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// SettlementService

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetBalancesResponse struct {
	Balances []*Balance `json:"balances"`
	Settled  bool       `json:"settled"`
}

type SuggestSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type SuggestSettlementsResponse struct {
	Suggestions   []*Transfer `json:"suggestions"`
	BalancesAfter []*Balance  `json:"balances_after"`
}

type RecordSettlementRequest struct {
	GroupID    string          `json:"group_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type AcceptSuggestionsRequest struct {
	GroupID string `json:"group_id"`
}

type AcceptSuggestionsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
