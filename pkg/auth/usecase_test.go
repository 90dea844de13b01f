package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/contacts/pkg/auth"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

// userRepoStub mimics a unique index on email.
type userRepoStub struct {
	mu    sync.Mutex
	users map[string]auth.User
}

func newUserRepoStub() *userRepoStub { return &userRepoStub{users: make(map[string]auth.User)} }

func (r *userRepoStub) Create(_ context.Context, u auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return auth.ErrUserAlreadyExists
	}
	r.users[u.Email] = u
	return nil
}

func (r *userRepoStub) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}

func (r *userRepoStub) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrNotFound
}

// racyRepoStub never reports the user on lookup, so every registration
// reaches Create and only the unique constraint can stop duplicates.
type racyRepoStub struct{ *userRepoStub }

func (racyRepoStub) GetByEmail(context.Context, string) (auth.User, error) {
	return auth.User{}, auth.ErrNotFound
}

type hasherStub struct{}

func (hasherStub) Hash(plain string) (string, error) { return "h:" + plain, nil }
func (hasherStub) Verify(plain, digest string) bool  { return digest == "h:"+plain }

type tokenStub struct{}

func (tokenStub) Generate(_ context.Context, u auth.User) (string, error) {
	return "token-" + u.ID.String(), nil
}

type revokerStub struct {
	revoked map[string]time.Time
	err     error
}

func (r *revokerStub) Revoke(_ context.Context, jti string, exp time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[jti] = exp
	return nil
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestAuthService_RegisterLogin(t *testing.T) {
	repo := newUserRepoStub()
	svc := auth.NewAuthService(repo, hasherStub{}, tokenStub{}, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.NotEqual(t, "s3cret-pass", repo.users[u.Email].PasswordHash)

	res, err := svc.Login(ctx, "ALICE@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Equal(t, "token-"+u.ID.String(), res.Token)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc := auth.NewAuthService(newUserRepoStub(), hasherStub{}, tokenStub{}, nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, "bob@example.com", "right")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "right")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc := auth.NewAuthService(newUserRepoStub(), hasherStub{}, tokenStub{}, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dup@example.com", "one")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "DUP@example.com", "two")
	assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)
}

func TestAuthService_RegisterConcurrentDuplicate(t *testing.T) {
	repo := racyRepoStub{newUserRepoStub()}
	svc := auth.NewAuthService(repo, hasherStub{}, tokenStub{}, nil)

	const n = 16
	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), "race@example.com", "pw")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, auth.ErrUserAlreadyExists):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, n-1, dup.Load())
}

func TestAuthService_RegisterEmptyInput(t *testing.T) {
	svc := auth.NewAuthService(newUserRepoStub(), hasherStub{}, tokenStub{}, nil)
	_, err := svc.Register(context.Background(), " ", "pw")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Register(context.Background(), "a@b.c", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Me(t *testing.T) {
	svc := auth.NewAuthService(newUserRepoStub(), hasherStub{}, tokenStub{}, nil)
	u, err := svc.Register(context.Background(), "me@example.com", "pw")
	require.NoError(t, err)

	got, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	svc := auth.NewAuthService(newUserRepoStub(), hasherStub{}, tokenStub{}, nil)
	assert.ErrorIs(t, svc.Logout(ctx, auth.Identity{TokenID: "j", ExpiresAt: exp}), auth.ErrRevocationUnavailable)

	rev := &revokerStub{revoked: map[string]time.Time{}}
	svc = auth.NewAuthService(newUserRepoStub(), hasherStub{}, tokenStub{}, rev)
	require.NoError(t, svc.Logout(ctx, auth.Identity{TokenID: "j1", ExpiresAt: exp}))
	assert.Equal(t, exp, rev.revoked["j1"])

	// already expired tokens need no entry
	require.NoError(t, svc.Logout(ctx, auth.Identity{TokenID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	assert.NotContains(t, rev.revoked, "old")

	assert.ErrorIs(t, svc.Logout(ctx, auth.Identity{ExpiresAt: exp}), auth.ErrInvalidCredentials)

	rev.err = errors.New("redis down")
	err := svc.Logout(ctx, auth.Identity{TokenID: "j2", ExpiresAt: exp})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "redis down"))
}

func TestIdentityContext(t *testing.T) {
	_, ok := auth.IdentityFromContext(context.Background())
	assert.False(t, ok)

	id := auth.Identity{UserID: uuid.New(), Email: "x@y.z"}
	got, ok := auth.IdentityFromContext(auth.WithIdentity(context.Background(), id))
	require.True(t, ok)
	assert.Equal(t, id, got)
}
