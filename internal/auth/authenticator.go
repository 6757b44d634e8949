package auth

import (
	"context"

	"homeledger/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods
// (password, passkeys, OAuth, etc.) without changing the service layer.
type Authenticator interface {
	// Register creates a new household member with the given email and
	// credential. The credential format depends on the implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.Member, error)

	// Authenticate verifies the member's credentials and returns the
	// member if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.Member, error)

	// ValidateCredential checks if the credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error
}
