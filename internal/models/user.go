package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a person who can belong to groups.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique, stored lowercase).
	Email string

	// DisplayName is the name shown in balances and suggestions.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	// Empty for users created from the CLI; they cannot log in.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
