package ledger

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/mmynk/settleup/internal/models"
)

// CreateUser registers a user. passwordHash may be empty for users that never log in.
func (l *Ledger) CreateUser(ctx context.Context, displayName, email, passwordHash string) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	email = NormalizeEmail(email)
	if displayName == "" {
		return nil, invalidf("display name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidf("invalid email %q", email)
	}

	user := models.NewUser(email, displayName, passwordHash)
	if err := l.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "User created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// GetUser returns a user by ID.
func (l *Ledger) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return l.store.GetUserByID(ctx, userID)
}

// ListUsers returns every user.
func (l *Ledger) ListUsers(ctx context.Context) ([]*models.User, error) {
	return l.store.ListUsers(ctx)
}

// DisplayNames resolves user IDs to display names. Unknown IDs map to themselves.
func (l *Ledger) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := l.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			names[id] = u.DisplayName
		} else {
			names[id] = id
		}
	}
	return names, nil
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUserByEmail looks a user up by address, ignoring case.
func (l *Ledger) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return l.store.GetUserByEmail(ctx, NormalizeEmail(email))
}
