package contact

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// UseCase инкапсулирует операции с контактами владельца.
type UseCase interface {
	Create(ctx context.Context, ownerID uuid.UUID, c Contact) (Contact, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Contact, error)
	List(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Contact, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, c Contact) (Contact, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID) ([]Contact, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) UseCase { return &service{repo: repo, now: time.Now} }

// NewServiceWithClock is NewService with an explicit notion of "today".
func NewServiceWithClock(repo Repository, now func() time.Time) UseCase {
	return &service{repo: repo, now: now}
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, c Contact) (Contact, error) {
	c, err := normalize(c)
	if err != nil {
		return Contact{}, err
	}
	now := s.now().UTC()
	c.ID = uuid.New()
	c.OwnerID = ownerID
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.repo.Create(ctx, c); err != nil {
		return Contact{}, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (Contact, error) {
	return s.repo.GetForOwner(ctx, ownerID, id)
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Contact, error) {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	if f.Limit <= 0 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.ListForOwner(ctx, ownerID, f)
}

func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, c Contact) (Contact, error) {
	c, err := normalize(c)
	if err != nil {
		return Contact{}, err
	}
	c.ID = id
	c.OwnerID = ownerID
	c.UpdatedAt = s.now().UTC()
	return s.repo.UpdateForOwner(ctx, c)
}

func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteForOwner(ctx, ownerID, id)
}

// UpcomingBirthdays returns contacts celebrating in the current Monday to
// Sunday week, in the order the birthdays occur.
func (s *service) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID) ([]Contact, error) {
	week := WeekOf(s.now())
	found, err := s.repo.ListByBirthdayForOwner(ctx, ownerID, week.Keys())
	if err != nil {
		return nil, err
	}
	type dated struct {
		c  Contact
		on time.Time
	}
	out := make([]dated, 0, len(found))
	for _, c := range found {
		if on, ok := week.Celebrated(c.Birthday); ok {
			out = append(out, dated{c: c, on: on})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].on.Equal(out[j].on) {
			return out[i].on.Before(out[j].on)
		}
		return out[i].c.LastName < out[j].c.LastName
	})
	res := make([]Contact, len(out))
	for i, d := range out {
		res[i] = d.c
	}
	return res, nil
}

func normalize(c Contact) (Contact, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.PhoneNumber = strings.TrimSpace(c.PhoneNumber)
	c.ExtraInfo = strings.TrimSpace(c.ExtraInfo)
	switch {
	case c.FirstName == "":
		return Contact{}, ErrValidation("first_name is required")
	case c.LastName == "":
		return Contact{}, ErrValidation("last_name is required")
	case c.Email == "":
		return Contact{}, ErrValidation("email is required")
	case c.PhoneNumber == "":
		return Contact{}, ErrValidation("phone_number is required")
	case c.Birthday.IsZero():
		return Contact{}, ErrValidation("birthday is required")
	}
	b := c.Birthday.UTC()
	c.Birthday = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return c, nil
}

// IsValidation reports whether err is an ErrValidation.
func IsValidation(err error) bool {
	var v ErrValidation
	return errors.As(err, &v)
}
