package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artem13815/contacts/pkg/auth"
)

type authUCStub struct {
	registerErr error
	loginErr    error
	meErr       error
	logoutErr   error

	registered []string
	loggedOut  []auth.Identity
	user       auth.User
}

func (s *authUCStub) Register(_ context.Context, email, _ string) (auth.User, error) {
	s.registered = append(s.registered, email)
	if s.registerErr != nil {
		return auth.User{}, s.registerErr
	}
	return auth.User{ID: uuid.New(), Email: auth.NormalizeEmail(email)}, nil
}

func (s *authUCStub) Login(_ context.Context, email, _ string) (auth.AuthResult, error) {
	if s.loginErr != nil {
		return auth.AuthResult{}, s.loginErr
	}
	return auth.AuthResult{User: auth.User{Email: email}, Token: "signed.jwt.token"}, nil
}

func (s *authUCStub) Me(_ context.Context, id uuid.UUID) (auth.User, error) {
	if s.meErr != nil {
		return auth.User{}, s.meErr
	}
	u := s.user
	u.ID = id
	return u, nil
}

func (s *authUCStub) Logout(_ context.Context, id auth.Identity) error {
	s.loggedOut = append(s.loggedOut, id)
	return s.logoutErr
}

func newAuthApp(uc auth.AuthUseCase, gate fiber.Handler) *fiber.App {
	h := NewAuthHandler(uc, zap.NewNop())
	app := fiber.New()
	app.Post("/users/register", h.Register)
	app.Post("/users/login", h.Login)
	app.Get("/users/me", gate, h.Me)
	app.Post("/users/logout", gate, h.Logout)
	return app
}

func passThrough(c *fiber.Ctx) error { return c.Next() }

func TestAuthHandler_Register(t *testing.T) {
	uc := &authUCStub{}
	app := newAuthApp(uc, passThrough)

	resp, body := do(t, app, http.MethodPost, "/users/register", map[string]string{
		"email": "New@Example.com", "password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "new@example.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	uc := &authUCStub{registerErr: auth.ErrUserAlreadyExists}
	app := newAuthApp(uc, passThrough)

	resp, body := do(t, app, http.MethodPost, "/users/register", map[string]string{
		"email": "dup@example.com", "password": "secret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "email already registered", body["message"])
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"bad email", map[string]string{"email": "not-an-email", "password": "secret-pass"}},
		{"short password", map[string]string{"email": "a@example.com", "password": "123"}},
		{"missing fields", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &authUCStub{}
			app := newAuthApp(uc, passThrough)
			resp, body := do(t, app, http.MethodPost, "/users/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["message"])
			assert.Empty(t, uc.registered)
		})
	}
}

func TestAuthHandler_RegisterInternalError(t *testing.T) {
	uc := &authUCStub{registerErr: errors.New("pool exhausted")}
	app := newAuthApp(uc, passThrough)

	resp, body := do(t, app, http.MethodPost, "/users/register", map[string]string{
		"email": "a@example.com", "password": "secret-pass",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body["message"], "pool exhausted")
}

func TestAuthHandler_Login(t *testing.T) {
	app := newAuthApp(&authUCStub{}, passThrough)

	resp, body := do(t, app, http.MethodPost, "/users/login", map[string]string{
		"email": "a@example.com", "password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "signed.jwt.token", body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	app := newAuthApp(&authUCStub{loginErr: auth.ErrInvalidCredentials}, passThrough)

	resp, body := do(t, app, http.MethodPost, "/users/login", map[string]string{
		"email": "a@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["message"])
}

func TestAuthHandler_LoginShortPasswordIsUnauthorized(t *testing.T) {
	app := newAuthApp(&authUCStub{loginErr: auth.ErrInvalidCredentials}, passThrough)

	resp, body := do(t, app, http.MethodPost, "/users/login", map[string]string{
		"email": "a@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["message"])
}

func TestAuthHandler_LoginMalformedJSON(t *testing.T) {
	app := newAuthApp(&authUCStub{}, passThrough)
	resp, body := do(t, app, http.MethodPost, "/users/login", "just a string")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid JSON payload", body["message"])
}

func TestAuthHandler_Me(t *testing.T) {
	id := testIdentity()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	uc := &authUCStub{user: auth.User{Email: id.Email, CreatedAt: created}}
	app := newAuthApp(uc, withIdentity(id))

	resp, body := do(t, app, http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id.UserID.String(), body["id"])
	assert.Equal(t, id.Email, body["email"])
	assert.Equal(t, "2026-01-02T03:04:05Z", body["created_at"])
}

func TestAuthHandler_MeWithoutIdentity(t *testing.T) {
	app := newAuthApp(&authUCStub{}, passThrough)
	resp, _ := do(t, app, http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_MeDeletedUser(t *testing.T) {
	app := newAuthApp(&authUCStub{meErr: auth.ErrNotFound}, withIdentity(testIdentity()))
	resp, _ := do(t, app, http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_Logout(t *testing.T) {
	id := testIdentity()
	uc := &authUCStub{}
	app := newAuthApp(uc, withIdentity(id))

	resp, _ := do(t, app, http.MethodPost, "/users/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Len(t, uc.loggedOut, 1)
	assert.Equal(t, id.TokenID, uc.loggedOut[0].TokenID)
}

func TestAuthHandler_LogoutFailure(t *testing.T) {
	app := newAuthApp(&authUCStub{logoutErr: errors.New("redis down")}, withIdentity(testIdentity()))
	resp, _ := do(t, app, http.MethodPost, "/users/logout", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
