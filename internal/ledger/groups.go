package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// CreateGroup creates a group with the given initial members.
func (l *Ledger) CreateGroup(ctx context.Context, name string, members []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("group name is required")
	}
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	if len(slices.Compact(sorted)) != len(members) {
		return nil, invalidf("duplicate member")
	}
	if err := l.requireUsers(ctx, members); err != nil {
		return nil, err
	}

	group := &models.Group{Name: name, Members: slices.Clone(members)}
	if group.Members == nil {
		group.Members = []string{}
	}
	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Group created", "group_id", group.ID, "members_count", len(group.Members))
	return group, nil
}

// GetGroup returns a group with its members.
func (l *Ledger) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return l.store.GetGroup(ctx, groupID)
}

// ListGroups returns every group.
func (l *Ledger) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return l.store.ListGroups(ctx)
}

// AddMember adds an existing user to a group.
func (l *Ledger) AddMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := l.requireUsers(ctx, []string{userID}); err != nil {
		return nil, err
	}
	if err := l.store.AddMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Member added", "group_id", groupID, "user_id", userID)
	return l.store.GetGroup(ctx, groupID)
}

// RemoveMember removes a member who has no expenses or settlements in the group.
func (l *Ledger) RemoveMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("member %s of group %s: %w", userID, groupID, storage.ErrNotFound)
	}

	expenses, err := l.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		if _, owes := e.Shares[userID]; owes || e.PayerID == userID {
			return nil, fmt.Errorf("%w: expense %s", ErrMemberHasHistory, e.ID)
		}
	}
	settlements, err := l.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, s := range settlements {
		if s.FromUserID == userID || s.ToUserID == userID {
			return nil, fmt.Errorf("%w: settlement %s", ErrMemberHasHistory, s.ID)
		}
	}

	if err := l.store.RemoveMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Member removed", "group_id", groupID, "user_id", userID)
	return l.store.GetGroup(ctx, groupID)
}

// DeleteGroup deletes a group with all of its expenses and settlements.
func (l *Ledger) DeleteGroup(ctx context.Context, groupID string) error {
	if err := l.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	if l.metrics != nil {
		l.metrics.forgetGroup(groupID)
	}
	slog.InfoContext(ctx, "Group deleted", "group_id", groupID)
	return nil
}

// requireUsers fails with storage.ErrNotFound naming the first unknown user.
func (l *Ledger) requireUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	users, err := l.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
		}
	}
	return nil
}
