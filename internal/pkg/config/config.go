package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend  BackendConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL, default=http://localhost:8081"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT,  default=30s"`
}

type SessionConfig struct {
	CheckInterval     time.Duration `env:"SESSION_CHECK_INTERVAL,      default=15s"`
	ForbiddenIsExpiry bool          `env:"SESSION_FORBIDDEN_IS_EXPIRY, default=true"`
}

type CheckoutConfig struct {
	ReturnSuccessPath string `env:"CHECKOUT_RETURN_SUCCESS_PATH"`
	ReturnCancelPath  string `env:"CHECKOUT_RETURN_CANCEL_PATH"`
	DispatchWorkers   int    `env:"DISPATCH_WORKERS, default=8"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ticket_checkout"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Prefix   string `env:"REDIS_PREFIX,   default=checkout"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Development reports whether the process runs outside production.
func (c *Config) Development() bool {
	return c.Env == "development" || c.Env == "local"
}
