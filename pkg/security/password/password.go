// Package password hashes and verifies user passwords with argon2id or bcrypt.
package password

import (
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	Argon2id = "argon2id"
	Bcrypt   = "bcrypt"
)

// DefaultArgon2Params follows the OWASP baseline for argon2id.
var DefaultArgon2Params = &argon2id.Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher produces digests with the configured algorithm and verifies digests
// of either algorithm, picked by the digest prefix.
type Hasher struct {
	algorithm  string
	pepper     string
	argon      *argon2id.Params
	bcryptCost int
}

type Option func(*Hasher)

// WithArgon2Params overrides the argon2id cost parameters.
func WithArgon2Params(p *argon2id.Params) Option {
	return func(h *Hasher) { h.argon = p }
}

// WithBcryptCost overrides the bcrypt cost.
func WithBcryptCost(cost int) Option {
	return func(h *Hasher) { h.bcryptCost = cost }
}

// WithPepper appends a server-side secret to every password before hashing.
func WithPepper(pepper string) Option {
	return func(h *Hasher) { h.pepper = pepper }
}

func New(algorithm string, opts ...Option) (*Hasher, error) {
	h := &Hasher{
		algorithm:  strings.ToLower(algorithm),
		argon:      DefaultArgon2Params,
		bcryptCost: bcrypt.DefaultCost,
	}
	switch h.algorithm {
	case Argon2id, Bcrypt:
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", algorithm)
	}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

func (h *Hasher) Hash(plain string) (string, error) {
	switch h.algorithm {
	case Bcrypt:
		b, err := bcrypt.GenerateFromPassword([]byte(plain+h.pepper), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(b), nil
	default:
		digest, err := argon2id.CreateHash(plain+h.pepper, h.argon)
		if err != nil {
			return "", fmt.Errorf("argon2id: %w", err)
		}
		return digest, nil
	}
}

// Verify reports whether plain matches digest. Malformed digests never match.
func (h *Hasher) Verify(plain, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		ok, err := argon2id.ComparePasswordAndHash(plain+h.pepper, digest)
		return err == nil && ok
	case isBcrypt(digest):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain+h.pepper)) == nil
	default:
		return false
	}
}

func isBcrypt(digest string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(digest, p) {
			return true
		}
	}
	return false
}
