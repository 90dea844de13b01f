package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/contacts/api/http/handlers"
)

// Routes groups what Register needs. Logout and Avatar are optional: nil
// leaves the route unregistered.
type Routes struct {
	Auth     *handlers.AuthHandler
	Contacts *handlers.ContactHandler
	Health   *handlers.HealthHandler
	Avatar   *handlers.AvatarHandler

	// RequireAuth validates the bearer token.
	RequireAuth fiber.Handler
	// RateLimit builds a per-IP limiter. Register, login and contact
	// creation each get their own instance.
	RateLimit func() fiber.Handler
	// LogoutEnabled registers POST /users/logout.
	LogoutEnabled bool
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, r Routes) {
	limit := r.RateLimit
	if limit == nil {
		limit = func() fiber.Handler {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
	}

	// Health and readiness endpoints for monitoring
	app.Get("/health", r.Health.Health)
	app.Get("/ready", r.Health.Ready)

	users := app.Group("/users")
	users.Post("/register", limit(), r.Auth.Register)
	users.Post("/login", limit(), r.Auth.Login)
	users.Get("/me", r.RequireAuth, r.Auth.Me)
	if r.LogoutEnabled {
		users.Post("/logout", r.RequireAuth, r.Auth.Logout)
	}

	contacts := app.Group("/contacts", r.RequireAuth)
	contacts.Get("/", r.Contacts.List)
	contacts.Post("/", limit(), r.Contacts.Create)
	// Must precede /:id.
	contacts.Get("/birthdays", r.Contacts.Birthdays)
	contacts.Get("/:id", r.Contacts.Get)
	contacts.Put("/:id", r.Contacts.Update)
	contacts.Delete("/:id", r.Contacts.Delete)

	if r.Avatar != nil {
		app.Post("/upload_avatar", r.RequireAuth, r.Avatar.Upload)
	}
}
