package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/loandesk/loandesk/internal/application"
	"github.com/loandesk/loandesk/internal/auth"
	"github.com/loandesk/loandesk/internal/config"
	"github.com/loandesk/loandesk/internal/identity"
	"github.com/loandesk/loandesk/internal/middleware"
	"github.com/loandesk/loandesk/internal/notification"
	"github.com/loandesk/loandesk/internal/otp"
	"github.com/loandesk/loandesk/internal/session"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Stores
	var (
		challenges   otp.Store
		sessions     session.Store
		identityRepo identity.Repository
		appRepo      application.Repository
		rateCache    redis.UniversalClient
	)
	if d.Cache != nil {
		challenges = otp.NewRedisStore(d.Cache)
		sessions = session.NewRedisStore(d.Cache)
		rateCache = d.Cache
	} else {
		challenges = otp.NewMemoryStore()
		sessions = session.NewMemoryStore()
	}
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		appRepo = application.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		appRepo = application.NewMemoryRepository()
	}

	// Services and handlers
	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(identityRepo, d.Logger)
	authSvc := auth.NewService(auth.Deps{
		Policy:     otpPolicy(d.Cfg.OTP),
		Challenges: challenges,
		Sessions:   sessions,
		Identities: identitySvc,
		Notifier:   notifier,
		Logger:     d.Logger,
	})
	applicationSvc := application.NewService(appRepo, notifier, d.Logger)

	api := app.Group("/api")

	// Public routes
	RegisterAuthRoutes(api, auth.NewHandler(authSvc), middleware.OTPRateLimit(rateCache, d.Cfg.OTP.RequestsPerMinute))

	// Protected routes
	protected := api.Group("", middleware.SessionAuth(authSvc))
	RegisterIdentityRoutes(protected, identity.NewHandler(identitySvc))

	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterApplicationRoutes(protected, application.NewHandler(applicationSvc), idempotency)

	return nil
}

func otpPolicy(cfg config.OTPConfig) otp.Policy {
	policy := otp.Policy{
		TTL:           cfg.TTL,
		SingleUse:     cfg.SingleUse,
		StrictCompare: cfg.StrictCompare,
	}
	if cfg.Code != "" {
		policy.Generator = otp.FixedCode(cfg.Code)
	} else {
		policy.Generator = otp.RandomDigits(cfg.Length)
	}
	return policy
}
