package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"

	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string        `env:"APP_NAME"         envDefault:"JobPortal"`
	AppEnv         string        `env:"APP_ENV"          envDefault:"development"`
	Port           string        `env:"PORT"             envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT"       envDefault:"json"`
	ShutdownPeriod time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	StoreBackend  string `env:"STORE_BACKEND"  envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"jobportal"`

	Registration Registration
	Mail         Mail

	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

// Registration holds the timing and throttling policy of the signup flow.
type Registration struct {
	OTPTTL          time.Duration `env:"OTP_TTL"                envDefault:"10m"`
	Retention       time.Duration `env:"REGISTRATION_RETENTION" envDefault:"1h"`
	PasswordHasher  string        `env:"PASSWORD_HASHER"        envDefault:"bcrypt"`
	VerifyRateLimit int           `env:"VERIFY_RATE_LIMIT"      envDefault:"10"`
}

// Mail holds outbound SMTP settings.
type Mail struct {
	Driver   string `env:"MAIL_DRIVER"   envDefault:"smtp"`
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"     envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	cfg.Mail.Driver = strings.ToLower(cfg.Mail.Driver)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set")
		}
		if c.RedisURL == "" {
			return errors.New("REDIS_URL must be set")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI must be set")
		}
	case BackendMemory:
		if !c.IsDev() {
			return fmt.Errorf("STORE_BACKEND=memory is not allowed when APP_ENV=%s", c.AppEnv)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.Registration.OTPTTL <= 0 {
		return errors.New("OTP_TTL must be positive")
	}
	if c.Registration.Retention <= c.Registration.OTPTTL {
		return fmt.Errorf("REGISTRATION_RETENTION (%s) must exceed OTP_TTL (%s)",
			c.Registration.Retention, c.Registration.OTPTTL)
	}

	switch c.Registration.PasswordHasher {
	case "bcrypt", "argon2":
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.Registration.PasswordHasher)
	}

	switch c.Mail.Driver {
	case MailDriverLog:
	case MailDriverSMTP:
		if c.Mail.Host == "" {
			return errors.New("SMTP_HOST must be set")
		}
		if c.Mail.From == "" {
			return errors.New("SMTP_FROM must be set")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver)
	}

	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
