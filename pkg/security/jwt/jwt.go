package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/artem13815/contacts/pkg/auth"
)

// Verification failures. Callers must not reveal which one occurred.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("expired token")
	ErrEmptySecret    = errors.New("jwt secret is empty")
)

const (
	ClaimSubject = "sub"
	ClaimEmail   = "email"
	ClaimID      = "jti"
	ClaimExpiry  = "exp"
	ClaimIssued  = "iat"
	ClaimIssuer  = "iss"
)

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Issuer signs HS256 access tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", ttl)
	}
	o := buildOptions(opts)
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: o.now}, nil
}

// Issue signs a copy of claims with exp, iat, jti and iss added. A zero ttl
// uses the issuer default.
func (i *Issuer) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.ttl
	}
	now := i.now().UTC()
	mc := make(jwt.MapClaims, len(claims)+4)
	maps.Copy(mc, claims)
	mc[ClaimIssued] = now.Unix()
	mc[ClaimExpiry] = now.Add(ttl).Unix()
	mc[ClaimID] = uuid.NewString()
	if i.issuer != "" {
		mc[ClaimIssuer] = i.issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return token.SignedString(i.secret)
}

// Generate implements auth.TokenGenerator.
func (i *Issuer) Generate(_ context.Context, user auth.User) (string, error) {
	return i.Issue(map[string]any{
		ClaimSubject: user.ID.String(),
		ClaimEmail:   user.Email,
	}, 0)
}

// Verifier validates HS256 tokens produced by Issuer.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret, expectedIssuer string, opts ...Option) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	o := buildOptions(opts)
	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
		jwt.WithJSONNumber(),
	}
	if expectedIssuer != "" {
		popts = append(popts, jwt.WithIssuer(expectedIssuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(popts...)}, nil
}

// Verify checks signature and expiry and returns the token claims. JSON
// numbers come back as int64 when integral and float64 otherwise, so integer
// claims keep their exact value.
func (v *Verifier) Verify(token string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	out := make(map[string]any, len(claims))
	for k, val := range claims {
		out[k] = numbers(val)
	}
	return out, nil
}

func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, val := range t {
			t[k] = numbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = numbers(val)
		}
		return t
	default:
		return v
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

// IdentityFromClaims maps verified claims onto the caller identity.
func IdentityFromClaims(claims map[string]any) (auth.Identity, error) {
	sub, _ := claims[ClaimSubject].(string)
	uid, err := uuid.Parse(sub)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	id := auth.Identity{UserID: uid}
	id.Email, _ = claims[ClaimEmail].(string)
	id.TokenID, _ = claims[ClaimID].(string)
	switch exp := claims[ClaimExpiry].(type) {
	case int64:
		id.ExpiresAt = time.Unix(exp, 0).UTC()
	case float64:
		id.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return id, nil
}
