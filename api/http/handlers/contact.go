package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/contacts/api/http/presenter"
	"github.com/artem13815/contacts/pkg/contact"
)

const dateLayout = "2006-01-02"

type ContactHandler struct {
	uc  contact.UseCase
	log *zap.Logger
}

func NewContactHandler(uc contact.UseCase, log *zap.Logger) *ContactHandler {
	return &ContactHandler{uc: uc, log: log.Named("contacts")}
}

type contactRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
	Birthday    string `json:"birthday" validate:"required,datetime=2006-01-02"`
	ExtraInfo   string `json:"extra_info" validate:"max=1000"`
}

func (r contactRequest) toContact() (contact.Contact, error) {
	b, err := time.Parse(dateLayout, r.Birthday)
	if err != nil {
		return contact.Contact{}, err
	}
	return contact.Contact{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Birthday:    b,
		ExtraInfo:   r.ExtraInfo,
	}, nil
}

type contactResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Birthday    string    `json:"birthday"`
	ExtraInfo   string    `json:"extra_info"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toContactResponse(c contact.Contact) contactResponse {
	return contactResponse{
		ID:          c.ID.String(),
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Birthday:    c.Birthday.Format(dateLayout),
		ExtraInfo:   c.ExtraInfo,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toContactList(cs []contact.Contact) []contactResponse {
	out := make([]contactResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toContactResponse(c))
	}
	return out
}

// @Summary  Create contact
// @Tags     contacts
// @Accept   json
// @Produce  json
// @Param    input body contactRequest true "contact"
// @Security BearerAuth
// @Success  201 {object} contactResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  409 {object} presenter.ErrorResponse
// @Failure  429 {object} presenter.ErrorResponse
// @Router   /contacts/ [post]
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	in, err := h.parse(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	created, err := h.uc.Create(c.UserContext(), id.UserID, in)
	if err != nil {
		return h.fail(c, "create contact failed", err)
	}
	return presenter.JSON(c, http.StatusCreated, toContactResponse(created))
}

// @Summary  List contacts
// @Tags     contacts
// @Produce  json
// @Param    name    query string false "first name"
// @Param    surname query string false "last name"
// @Param    email   query string false "email"
// @Param    limit   query int    false "page size (1..200)"
// @Param    offset  query int    false "offset"
// @Security BearerAuth
// @Success  200 {array} contactResponse
// @Router   /contacts/ [get]
func (h *ContactHandler) List(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	limit, offset := parseLimitOffset(c)
	cs, err := h.uc.List(c.UserContext(), id.UserID, contact.Filter{
		FirstName: c.Query("name"),
		LastName:  c.Query("surname"),
		Email:     c.Query("email"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return h.fail(c, "list contacts failed", err)
	}
	return presenter.JSON(c, http.StatusOK, toContactList(cs))
}

// @Summary  Birthdays this week
// @Description Contacts whose birthday falls in the current Monday to Sunday week.
// @Tags     contacts
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} contactResponse
// @Router   /contacts/birthdays/ [get]
func (h *ContactHandler) Birthdays(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	cs, err := h.uc.UpcomingBirthdays(c.UserContext(), id.UserID)
	if err != nil {
		return h.fail(c, "birthdays failed", err)
	}
	return presenter.JSON(c, http.StatusOK, toContactList(cs))
}

// @Summary  Get contact
// @Tags     contacts
// @Produce  json
// @Param    id path string true "contact id (UUID)"
// @Security BearerAuth
// @Success  200 {object} contactResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /contacts/{id} [get]
func (h *ContactHandler) Get(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	cid, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid contact id")
	}
	got, err := h.uc.Get(c.UserContext(), id.UserID, cid)
	if err != nil {
		return h.fail(c, "get contact failed", err)
	}
	return presenter.JSON(c, http.StatusOK, toContactResponse(got))
}

// @Summary  Update contact
// @Tags     contacts
// @Accept   json
// @Produce  json
// @Param    id    path string         true "contact id (UUID)"
// @Param    input body contactRequest true "contact"
// @Security BearerAuth
// @Success  200 {object} contactResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Failure  409 {object} presenter.ErrorResponse
// @Router   /contacts/{id} [put]
func (h *ContactHandler) Update(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	cid, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid contact id")
	}
	in, err := h.parse(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	updated, err := h.uc.Update(c.UserContext(), id.UserID, cid, in)
	if err != nil {
		return h.fail(c, "update contact failed", err)
	}
	return presenter.JSON(c, http.StatusOK, toContactResponse(updated))
}

// @Summary  Delete contact
// @Tags     contacts
// @Produce  json
// @Param    id path string true "contact id (UUID)"
// @Security BearerAuth
// @Success  200 {object} presenter.MessageResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	cid, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid contact id")
	}
	if err := h.uc.Delete(c.UserContext(), id.UserID, cid); err != nil {
		return h.fail(c, "delete contact failed", err)
	}
	return presenter.Message(c, http.StatusOK, "Contact deleted successfully")
}

func (h *ContactHandler) parse(c *fiber.Ctx) (contact.Contact, error) {
	var req contactRequest
	if err := bind(c, &req); err != nil {
		return contact.Contact{}, err
	}
	in, err := req.toContact()
	if err != nil {
		return contact.Contact{}, errors.New("birthday must be a date in YYYY-MM-DD format")
	}
	return in, nil
}

func (h *ContactHandler) fail(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, contact.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "Contact not found")
	case errors.Is(err, contact.ErrDuplicateEmail):
		return presenter.Error(c, http.StatusConflict, err.Error())
	case contact.IsValidation(err):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	default:
		return presenter.Internal(c, h.log, op, err)
	}
}
