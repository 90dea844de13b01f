package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors used by repository/use cases
var (
	ErrNotFound              = errors.New("not found")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrRevocationUnavailable = errors.New("token revocation is not configured")
)

// UserRepository abstracts persistence concerns from the domain layer.
// Create must fail with ErrUserAlreadyExists when the email is taken, even
// when two registrations race.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}
