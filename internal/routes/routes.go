package routes

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jobportal/jobportal/internal/config"
	"github.com/jobportal/jobportal/internal/identity"
	"github.com/jobportal/jobportal/internal/middleware"
	"github.com/jobportal/jobportal/internal/notification"
	"github.com/jobportal/jobportal/internal/otp"
	"github.com/jobportal/jobportal/internal/password"
	"github.com/jobportal/jobportal/internal/pending"
	"github.com/jobportal/jobportal/internal/registration"
)

// Deps aggregates shared dependencies required to wire routes. Which clients
// must be set depends on Cfg.StoreBackend.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Mongo  *mongo.Client
	Logger *zerolog.Logger

	// Notifier overrides the mail driver selected by Cfg.Mail.
	Notifier notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Logger == nil {
		nop := zerolog.Nop()
		d.Logger = &nop
	}

	users, pendingRepo, err := buildStores(d)
	if err != nil {
		return err
	}
	notifier, err := buildNotifier(d)
	if err != nil {
		return err
	}
	hasher, err := password.New(d.Cfg.Registration.PasswordHasher)
	if err != nil {
		return err
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	origins := strings.Join(d.Cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key, X-Request-ID",
		// Fiber refuses credentials together with a wildcard origin.
		AllowCredentials: origins != "" && origins != "*",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	registrationSvc := registration.NewService(
		users,
		pendingRepo,
		otp.NewGenerator(d.Cfg.Registration.OTPTTL),
		hasher,
		notifier,
		d.Logger,
	)
	registrationHandler := registration.NewHandler(registrationSvc, d.Logger)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterRegistrationRoutes(
		api,
		registrationHandler,
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
		middleware.OTPRateLimit(d.Cache, d.Cfg.Registration.VerifyRateLimit),
	)

	return nil
}

func buildStores(d Deps) (identity.Repository, pending.Repository, error) {
	retention := d.Cfg.Registration.Retention

	switch d.Cfg.StoreBackend {
	case config.BackendPostgres:
		if d.DB == nil {
			return nil, nil, fmt.Errorf("database is required when STORE_BACKEND=%s", d.Cfg.StoreBackend)
		}
		if d.Cache == nil {
			return nil, nil, fmt.Errorf("redis is required when STORE_BACKEND=%s", d.Cfg.StoreBackend)
		}
		return identity.NewPostgresRepository(d.DB), pending.NewRedisRepository(d.Cache, retention), nil

	case config.BackendMongo:
		if d.Mongo == nil {
			return nil, nil, fmt.Errorf("mongo is required when STORE_BACKEND=%s", d.Cfg.StoreBackend)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db := d.Mongo.Database(d.Cfg.MongoDatabase)
		users, err := identity.NewMongoRepository(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		pendingRepo, err := pending.NewMongoRepository(ctx, db, retention)
		if err != nil {
			return nil, nil, err
		}
		return users, pendingRepo, nil

	case config.BackendMemory:
		d.Logger.Warn().Msg("using in-memory stores; data is lost on restart")
		return identity.NewMemoryRepository(), pending.NewMemoryRepository(retention, nil), nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", d.Cfg.StoreBackend)
	}
}

func buildNotifier(d Deps) (notification.Notifier, error) {
	if d.Notifier != nil {
		return d.Notifier, nil
	}
	switch d.Cfg.Mail.Driver {
	case config.MailDriverLog:
		return notification.NewLoggerNotifier(d.Logger), nil
	default:
		return notification.NewSMTPNotifier(notification.SMTPConfig{
			Host:     d.Cfg.Mail.Host,
			Port:     d.Cfg.Mail.Port,
			Username: d.Cfg.Mail.Username,
			Password: d.Cfg.Mail.Password,
			From:     d.Cfg.Mail.From,
		})
	}
}
