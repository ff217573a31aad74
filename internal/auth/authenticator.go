// Package auth implements account registration, credential checks and
// session tokens.
package auth

import (
	"context"

	"github.com/mmynk/triplan/internal/models"
)

// Authenticator verifies who a caller is.
// Implementations other than passwords (OAuth, magic links) can be plugged
// into AuthService without touching it.
type Authenticator interface {
	// Register creates a new account. The credential format depends on the
	// implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before it is stored.
	ValidateCredential(credential string) error
}
