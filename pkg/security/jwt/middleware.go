package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/artem13815/contacts/pkg/auth"
)

var (
	errMissingBearer = errors.New("missing bearer token")
	errRevoked       = errors.New("revoked token")
)

// TokenVerifier is satisfied by *Verifier.
type TokenVerifier interface {
	Verify(token string) (map[string]any, error)
}

// RevocationList reports whether a token id was revoked before expiry.
type RevocationList interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256).
// On success the caller identity is stored in c.UserContext().
// revoked may be nil.
func NewAuthMiddleware(verifier TokenVerifier, revoked RevocationList, log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		id, err := authenticate(c, verifier, revoked)
		if err != nil {
			log.Debug("request not authenticated",
				zap.String("path", utils.CopyString(c.Path())),
				zap.String("reason", reason(err)),
			)
			return unauthorized(c)
		}
		c.SetUserContext(auth.WithIdentity(c.UserContext(), id))
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, verifier TokenVerifier, revoked RevocationList) (auth.Identity, error) {
	tokenStr, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return auth.Identity{}, errMissingBearer
	}
	claims, err := verifier.Verify(tokenStr)
	if err != nil {
		return auth.Identity{}, err
	}
	id, err := IdentityFromClaims(claims)
	if err != nil {
		return auth.Identity{}, err
	}
	if revoked != nil && id.TokenID != "" {
		isRevoked, err := revoked.IsRevoked(c.UserContext(), id.TokenID)
		if err != nil {
			return auth.Identity{}, err
		}
		if isRevoked {
			return auth.Identity{}, errRevoked
		}
	}
	return id, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reason(err error) string {
	switch {
	case errors.Is(err, errMissingBearer):
		return "missing"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrInvalidToken):
		return "invalid"
	case errors.Is(err, errRevoked):
		return "revoked"
	default:
		return "error: " + err.Error()
	}
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "could not validate credentials"})
}
