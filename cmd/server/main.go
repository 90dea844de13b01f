// @title         contacts API
// @version       1.0
// @description   Address book REST API with JWT authentication, birthday reminders and avatar upload.
// @BasePath      /
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <JWT>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/artem13815/contacts/docs"

	// internal imports
	"github.com/artem13815/contacts/api/http"
	"github.com/artem13815/contacts/api/http/handlers"
	"github.com/artem13815/contacts/api/http/middleware"
	"github.com/artem13815/contacts/api/http/presenter"
	"github.com/artem13815/contacts/pkg/auth"
	"github.com/artem13815/contacts/pkg/avatar"
	"github.com/artem13815/contacts/pkg/config"
	"github.com/artem13815/contacts/pkg/contact"
	"github.com/artem13815/contacts/pkg/health"
	"github.com/artem13815/contacts/pkg/health/checkers"
	"github.com/artem13815/contacts/pkg/logging"
	pgrepo "github.com/artem13815/contacts/pkg/repository/postgres"
	"github.com/artem13815/contacts/pkg/security/jwt"
	"github.com/artem13815/contacts/pkg/security/password"
	"github.com/artem13815/contacts/pkg/security/revocation"
	"github.com/artem13815/contacts/pkg/storage/objectstore"
	"github.com/artem13815/contacts/pkg/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "contacts: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from env/.env
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and bring the schema up to date
	pool, err := postgres.Connect(ctx, postgres.Options{DSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	log.Info("database ready")

	hasher, err := password.New(cfg.PasswordHasher, password.WithPepper(cfg.PasswordPepper))
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}
	issuer, err := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("jwt issuer: %w", err)
	}
	verifier, err := jwt.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("jwt verifier: %w", err)
	}

	readinessChecks := []health.Checker{checkers.NewPostgresChecker(pool)}

	// Optional token revocation
	var (
		revoker auth.TokenRevoker
		revoked jwt.RevocationList
	)
	if cfg.RedisURL != "" {
		rdb, err := revocation.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		list := revocation.NewRedisList(rdb)
		revoker, revoked = list, list
		readinessChecks = append(readinessChecks, checkers.NewRedisChecker(rdb))
		log.Info("token revocation enabled")
	}

	// Wire dependencies (Clean Architecture)
	userRepo := pgrepo.NewUserRepository(pool)
	contactRepo := pgrepo.NewContactRepository(pool)

	authUC := auth.NewAuthService(userRepo, hasher, issuer, revoker)
	contactUC := contact.NewService(contactRepo)

	routes := http.Routes{
		Auth:          handlers.NewAuthHandler(authUC, log),
		Contacts:      handlers.NewContactHandler(contactUC, log),
		Health:        handlers.NewHealthHandler(health.NewService(readinessChecks...)),
		RequireAuth:   jwt.NewAuthMiddleware(verifier, revoked, log.Named("auth")),
		RateLimit: func() fiber.Handler {
			return middleware.NewRateLimitPerIP(middleware.RateLimitConfig{PerMinute: cfg.RateLimitPerMinute})
		},
		LogoutEnabled: revoker != nil,
	}

	if cfg.AvatarsEnabled() {
		uploader, err := objectstore.NewS3Uploader(ctx, objectstore.Config{
			Bucket:        cfg.Avatar.Bucket,
			Region:        cfg.Avatar.Region,
			Endpoint:      cfg.Avatar.Endpoint,
			AccessKey:     cfg.Avatar.AccessKey,
			SecretKey:     cfg.Avatar.SecretKey,
			PublicBaseURL: cfg.Avatar.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("avatar storage: %w", err)
		}
		routes.Avatar = handlers.NewAvatarHandler(avatar.NewService(uploader, cfg.Avatar.Folder, cfg.Avatar.MaxBytes), log)
		log.Info("avatar upload enabled", zap.String("bucket", cfg.Avatar.Bucket))
	}

	app := newApp(cfg, log)
	http.Register(app, routes)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("port", cfg.Port))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(sctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func newApp(cfg config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "contacts",
		DisableStartupMessage: true,
		// Multipart overhead on top of the largest accepted avatar.
		BodyLimit: int(cfg.Avatar.MaxBytes) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return presenter.Error(c, fe.Code, fe.Message)
			}
			return presenter.Internal(c, log, "unhandled error", err)
		},
	})
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSAllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))
	return app
}
