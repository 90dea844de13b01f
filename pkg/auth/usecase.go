package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (User, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Me(ctx context.Context, id uuid.UUID) (User, error)
	Logout(ctx context.Context, id Identity) error
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo    UserRepository
	hasher  PasswordHasher
	tokens  TokenGenerator
	revoker TokenRevoker
	now     func() time.Time
}

// NewAuthService returns default implementation of AuthUseCase. revoker may
// be nil, in which case Logout reports ErrRevocationUnavailable.
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenGenerator, revoker TokenRevoker) AuthUseCase {
	return &authService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		revoker: revoker,
		now:     time.Now,
	}
}

// NormalizeEmail is the canonical form under which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	// Fast path only; the unique constraint in the repository decides races.
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return User{}, ErrUserAlreadyExists
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Me(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *authService) Logout(ctx context.Context, id Identity) error {
	if s.revoker == nil {
		return ErrRevocationUnavailable
	}
	if id.TokenID == "" {
		return ErrInvalidCredentials
	}
	if !id.ExpiresAt.After(s.now()) {
		return nil
	}
	return s.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt)
}
