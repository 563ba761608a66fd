package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"example.com/storefront/internal/cache"
	"example.com/storefront/internal/events"
)

type Config struct {
	Env  string `envconfig:"APP_ENV" default:"dev"`
	Port string `envconfig:"APP_PORT" default:"8080"`

	DSN       string `envconfig:"DB_DSN" required:"true"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Bootstrap admin; skipped when either is empty.
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	SeedDemo      bool   `envconfig:"SEED_DEMO" default:"false"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	Redis cache.Config
	Kafka events.Config
}

func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
