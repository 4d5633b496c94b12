package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type StoreDriver string

const (
	StoreMemory   StoreDriver = "memory"
	StoreRedis    StoreDriver = "redis"
	StorePostgres StoreDriver = "postgres"
)

// OnboardingMode decide cómo se eleva un usuario a paseador.
type OnboardingMode string

const (
	OnboardingLocal  OnboardingMode = "local"
	OnboardingServer OnboardingMode = "server"
)

// Config del proceso api. Todo sale de env (con .env opcional).
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":4200"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Backend de autenticación externo.
	AuthAPIBaseURL string        `env:"AUTH_API_BASE_URL" envDefault:"http://localhost:8080/api"`
	AuthAPITimeout time.Duration `env:"AUTH_API_TIMEOUT" envDefault:"10s"`

	// Storage
	StoreDriver    StoreDriver `env:"STORE_DRIVER" envDefault:"memory"`
	RedisAddr      string      `env:"REDIS_ADDR"`
	RedisPassword  string      `env:"REDIS_PASSWORD"`
	RedisDB        int         `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string      `env:"REDIS_KEY_PREFIX" envDefault:"petfy:"`
	DBDSN          string      `env:"DB_DSN"`

	// Pool de Postgres
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	DBPingTimeout     time.Duration `env:"DB_PING_TIMEOUT" envDefault:"3s"`

	// Eventos (opcional)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"petfy.walks"`

	// Tiempos del ciclo de vida
	ConfirmWindow      time.Duration `env:"CONFIRM_WINDOW" envDefault:"5s"`
	ChatReplyDelay     time.Duration `env:"CHAT_REPLY_DELAY" envDefault:"2500ms"`
	WalkButtonCooldown time.Duration `env:"WALK_BUTTON_COOLDOWN" envDefault:"5s"`

	WalkerOnboarding OnboardingMode `env:"WALKER_ONBOARDING" envDefault:"local"`

	// Rate limit para /login y /register (por IP)
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" envDefault:"5"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"10"`

	SessionCookie string `env:"SESSION_COOKIE" envDefault:"petfy_session"`
	// Sesiones sin requests por más de esto salen del cache en memoria.
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	// Cada cuánto se purgan sesiones ociosas y limiters por IP.
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"5m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"petfy"`
}

// LoadDotEnv carga .env si existe. La ausencia del archivo no es error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load lee la config desde el entorno del proceso.
func Load() (Config, error) {
	return parse(env.Options{})
}

// FromMap es como Load pero con un entorno explícito (tests).
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func (c *Config) normalize() {
	c.StoreDriver = StoreDriver(strings.ToLower(strings.TrimSpace(string(c.StoreDriver))))
	c.WalkerOnboarding = OnboardingMode(strings.ToLower(strings.TrimSpace(string(c.WalkerOnboarding))))
	c.AuthAPIBaseURL = strings.TrimRight(strings.TrimSpace(c.AuthAPIBaseURL), "/")

	brokers := make([]string, 0, len(c.KafkaBrokers))
	for _, b := range c.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.KafkaBrokers = brokers
}

func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMemory:
	case StoreRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when STORE_DRIVER=redis"))
		}
	case StorePostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			errs = append(errs, errors.New("DB_DSN is required when STORE_DRIVER=postgres"))
		}
		if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
			errs = append(errs, errors.New("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS (> 0)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.WalkerOnboarding {
	case OnboardingLocal, OnboardingServer:
	default:
		errs = append(errs, fmt.Errorf("unknown WALKER_ONBOARDING %q", c.WalkerOnboarding))
	}

	if c.AuthAPIBaseURL == "" {
		errs = append(errs, errors.New("AUTH_API_BASE_URL must not be empty"))
	}
	if c.ConfirmWindow <= 0 {
		errs = append(errs, errors.New("CONFIRM_WINDOW must be > 0"))
	}
	if c.ChatReplyDelay < 0 {
		errs = append(errs, errors.New("CHAT_REPLY_DELAY must be >= 0"))
	}
	// una respuesta de chat en vuelo guarda la sesión; no puede sobrevivir al desalojo
	if c.SessionIdleTTL <= c.ChatReplyDelay {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must be > CHAT_REPLY_DELAY"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("CLEANUP_INTERVAL must be > 0"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be > 0"))
	}

	return errors.Join(errs...)
}
