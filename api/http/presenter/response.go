package presenter

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is returned by operations that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

func Message(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, MessageResponse{Message: message})
}

// Internal logs err and answers 500 without leaking its text.
func Internal(c *fiber.Ctx, log *zap.Logger, op string, err error) error {
	log.Error(op,
		zap.String("method", c.Method()),
		zap.String("path", utils.CopyString(c.Path())),
		zap.Error(err),
	)
	return Error(c, http.StatusInternalServerError, "internal server error")
}
