package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jobportal/jobportal/internal/config"
	"github.com/jobportal/jobportal/internal/middleware"
	"github.com/jobportal/jobportal/internal/routes"
)

// Backends carries the store clients opened at startup. Unused ones stay nil.
type Backends struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
	Mongo *mongo.Client
}

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, backends Backends, logger *zerolog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             1 << 20,
		DisableStartupMessage: !cfg.IsDev(),
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	deps := routes.Deps{
		Cfg:    cfg,
		DB:     backends.DB,
		Cache:  backends.Cache,
		Mongo:  backends.Mongo,
		Logger: logger,
	}
	if err := routes.Setup(app, deps); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg}, nil
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
