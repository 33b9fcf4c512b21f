// Package auth implements credential checks and session tokens for the RPC API.
package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	// The credential format depends on the implementation (a password here).
	// Returns the created user, or ErrEmailExists when the address is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Unknown addresses and wrong credentials both return ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	// For passwords: minimum length.
	ValidateCredential(credential string) error
}
