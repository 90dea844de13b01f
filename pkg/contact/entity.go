package contact

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Contact is an address-book entry owned by exactly one user.
type Contact struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Birthday    time.Time
	ExtraInfo   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter narrows a listing; empty fields match everything.
type Filter struct {
	FirstName string
	LastName  string
	Email     string
	Limit     int
	Offset    int
}

var (
	ErrNotFound       = errors.New("contact not found")
	ErrDuplicateEmail = errors.New("contact with this email already exists")
)

// ErrValidation is returned for input the domain rejects.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// Repository is the persistence port. Every method is scoped to ownerID;
// rows of other owners behave as if they did not exist.
type Repository interface {
	Create(ctx context.Context, c Contact) error
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (Contact, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Contact, error)
	UpdateForOwner(ctx context.Context, c Contact) (Contact, error)
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
	// ListByBirthdayForOwner returns contacts whose birthday month/day is one
	// of keys ("MM-DD").
	ListByBirthdayForOwner(ctx context.Context, ownerID uuid.UUID, keys []string) ([]Contact, error)
}
