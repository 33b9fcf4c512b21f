// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

var (
	// ErrNotFound is wrapped by every lookup that finds no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is wrapped when a write violates a uniqueness rule
	// (duplicate email, member already in group).
	ErrConflict = errors.New("already exists")
)

// Store defines the interface for settleup storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger or service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists users.
type UserStore interface {
	// CreateUser persists a new user. The user.ID field is populated if empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if no user has the given ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail returns ErrNotFound if no user has the given email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// ListUsers returns all users ordered by display name.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup persists a new group with its initial members.
	// The group.ID and group.CreatedAt fields are populated if empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with members in join order, or ErrNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all groups ordered by creation time.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// AddMember appends userID to the group's members.
	AddMember(ctx context.Context, groupID, userID string) error

	// RemoveMember removes userID from the group's members.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// DeleteGroup removes the group with its expenses and settlements.
	DeleteGroup(ctx context.Context, groupID string) error
}

// ExpenseStore persists expenses together with their resolved shares.
type ExpenseStore interface {
	// CreateExpense persists the expense and its shares atomically.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByGroup returns a group's expenses in the order they were recorded.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
}

// SettlementStore persists recorded settlements.
type SettlementStore interface {
	// CreateSettlement persists a single settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// CreateSettlements persists all settlements or none of them.
	CreateSettlements(ctx context.Context, settlements []*models.Settlement) error

	// GetSettlement returns the settlement with the given ID, or ErrNotFound.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
}
