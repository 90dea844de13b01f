package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/contacts/api/http/presenter"
	"github.com/artem13815/contacts/pkg/avatar"
)

type AvatarHandler struct {
	uc  avatar.UseCase
	log *zap.Logger
}

func NewAvatarHandler(uc avatar.UseCase, log *zap.Logger) *AvatarHandler {
	return &AvatarHandler{uc: uc, log: log.Named("avatar")}
}

type avatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// Upload принимает изображение и отдаёт его во внешнее хранилище.
// @Summary  Upload avatar
// @Tags     users
// @Accept   multipart/form-data
// @Produce  json
// @Param    file formData file true "image file"
// @Security BearerAuth
// @Success  200 {object} avatarResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  413 {object} presenter.ErrorResponse
// @Failure  415 {object} presenter.ErrorResponse
// @Failure  502 {object} presenter.ErrorResponse
// @Router   /upload_avatar [post]
func (h *AvatarHandler) Upload(c *fiber.Ctx) error {
	id, ok := identity(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "could not validate credentials")
	}
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required")
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	url, err := h.uc.Upload(c.UserContext(), id.UserID, fh.Header.Get(fiber.HeaderContentType), fh.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, avatar.ErrNotImage):
			return presenter.Error(c, http.StatusUnsupportedMediaType, avatar.ErrNotImage.Error())
		case errors.Is(err, avatar.ErrTooLarge):
			return presenter.Error(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, avatar.ErrUpstream):
			h.log.Warn("avatar upload failed", zap.String("user_id", id.UserID.String()), zap.Error(err))
			return presenter.Error(c, http.StatusBadGateway, "image host is unavailable")
		default:
			return presenter.Internal(c, h.log, "avatar upload failed", err)
		}
	}
	return presenter.JSON(c, http.StatusOK, avatarResponse{AvatarURL: url})
}
