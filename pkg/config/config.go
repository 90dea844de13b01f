package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// minSecretLen is the shortest HS256 secret accepted at startup.
const minSecretLen = 32

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty,unset"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"contacts-api"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"30m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	PasswordHasher string `env:"PASSWORD_HASHER" envDefault:"argon2id"`
	PasswordPepper string `env:"PASSWORD_PEPPER,unset"`

	// Empty disables token revocation.
	RedisURL string `env:"REDIS_URL"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,https://Mywebsite.com"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"5"`

	Avatar AvatarConfig `envPrefix:"AVATAR_"`
}

type AvatarConfig struct {
	Bucket        string `env:"S3_BUCKET"`
	Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint      string `env:"S3_ENDPOINT"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY,unset"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	Folder        string `env:"FOLDER" envDefault:"avatars"`
	MaxBytes      int64  `env:"MAX_BYTES" envDefault:"5242880"`
}

// Load reads environment variables, optionally from a .env file if present.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks constraints the struct tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch strings.ToLower(c.PasswordHasher) {
	case "argon2id", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASHER %q is not supported", c.PasswordHasher))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); c.LogLevel != "" && err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not a log level", c.LogLevel))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	if c.Avatar.MaxBytes <= 0 {
		errs = append(errs, errors.New("AVATAR_MAX_BYTES must be positive"))
	}
	for _, o := range c.CORSAllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must list origins explicitly"))
			break
		}
	}
	return errors.Join(errs...)
}

// AvatarsEnabled reports whether an image host is configured.
func (c Config) AvatarsEnabled() bool { return c.Avatar.Bucket != "" }
