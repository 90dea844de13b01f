package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/contacts/api/http/presenter"
	"github.com/artem13815/contacts/pkg/auth"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
	log     *zap.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, log: log.Named("auth")}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// loginRequest has no minimum length so a short wrong password is a
// credential failure rather than a validation error.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,max=72"`
}

type userResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles user registration.
// @Summary Register user
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body credentialsRequest true "registration payload"
// @Success 201 {object} userResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /users/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}

	user, err := h.useCase.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserAlreadyExists):
			return presenter.Error(c, http.StatusBadRequest, "email already registered")
		case errors.Is(err, auth.ErrInvalidCredentials):
			return presenter.Error(c, http.StatusBadRequest, "email and password are required")
		default:
			return presenter.Internal(c, h.log, "register failed", err)
		}
	}
	h.log.Info("user registered", zap.String("user_id", user.ID.String()))

	return presenter.JSON(c, http.StatusCreated, userResponse{
		ID:    user.ID.String(),
		Email: user.Email,
	})
}

// Login exchanges credentials for an access token.
// @Summary Login
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return presenter.Error(c, http.StatusUnauthorized, "invalid credentials")
		}
		return presenter.Internal(c, h.log, "login failed", err)
	}

	return presenter.JSON(c, http.StatusOK, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
	})
}

// Me returns the authenticated user.
// @Summary  Current user
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} userResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /users/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	user, err := h.useCase.Me(c.UserContext(), id.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
		}
		return presenter.Internal(c, h.log, "load user failed", err)
	}
	created := user.CreatedAt
	return presenter.JSON(c, http.StatusOK, userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		CreatedAt: &created,
	})
}

// Logout revokes the presented token until it expires.
// @Summary  Logout
// @Tags     users
// @Security BearerAuth
// @Success  204
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /users/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	if err := h.useCase.Logout(c.UserContext(), id); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
		case errors.Is(err, auth.ErrRevocationUnavailable):
			return presenter.Error(c, http.StatusNotImplemented, "logout is not enabled")
		default:
			return presenter.Internal(c, h.log, "logout failed", err)
		}
	}
	return c.SendStatus(http.StatusNoContent)
}

func identity(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(c.UserContext())
	if !ok || id.UserID == uuid.Nil {
		return auth.Identity{}, false
	}
	return id, true
}
