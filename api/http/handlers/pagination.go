package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/contacts/pkg/contact"
)

// parseLimitOffset reads ?limit= and ?offset=. Out of range values fall back
// to the defaults rather than failing the request.
func parseLimitOffset(c *fiber.Ctx) (limit, offset int) {
	limit = contact.DefaultLimit
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= contact.MaxLimit {
			limit = n
		}
	}
	if v := strings.TrimSpace(c.Query("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
