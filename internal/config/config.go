// README: Config loader: optional .env file, then RECLAIM_* environment variables with defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "RECLAIM"

type HTTPConfig struct {
	Addr            string        `default:":8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

type LifecycleConfig struct {
	// LockTimeout bounds waiting for a booking lock.
	LockTimeout time.Duration `envconfig:"LOCK_TIMEOUT" default:"5s"`
	// LockTTL is how long a Redis lock survives a crashed holder.
	LockTTL         time.Duration `envconfig:"LOCK_TTL" default:"30s"`
	StoreTimeout    time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	DistanceTimeout time.Duration `envconfig:"DISTANCE_TIMEOUT" default:"3s"`
}

type Config struct {
	Env string `default:"development"`

	HTTP HTTPConfig

	// An empty DSN runs on the in-memory store.
	DB struct {
		DSN string
	}

	// An empty address uses the in-process locker.
	Redis struct {
		Addr     string
		Password string
		DB       int `default:"0"`
	}

	Maps struct {
		APIKey             string  `envconfig:"API_KEY"`
		DepotPostcode      string  `envconfig:"DEPOT_POSTCODE" default:"LS10 1DJ"`
		DefaultRoundTripKm float64 `envconfig:"DEFAULT_ROUND_TRIP_KM" default:"50"`
	}

	Lifecycle LifecycleConfig

	Log struct {
		Level string `default:"info"`
	}

	RateLimit struct {
		RPS   float64 `default:"20"`
		Burst int     `default:"40"`
	}

	// CatalogFile replaces the built-in asset catalog when set.
	CatalogFile string `envconfig:"CATALOG_FILE"`
}

// Load reads envFiles (default ".env") when present, then the environment.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Lifecycle.LockTimeout <= 0 {
		return fmt.Errorf("config: lock timeout must be positive")
	}
	if c.Lifecycle.StoreTimeout <= 0 {
		return fmt.Errorf("config: store timeout must be positive")
	}
	// A Redis lock must outlive the unit of work it guards.
	if c.Redis.Addr != "" && c.Lifecycle.LockTTL <= c.Lifecycle.StoreTimeout {
		return fmt.Errorf("config: lock ttl %s must exceed store timeout %s", c.Lifecycle.LockTTL, c.Lifecycle.StoreTimeout)
	}
	if c.Maps.DefaultRoundTripKm < 0 {
		return fmt.Errorf("config: default round trip must not be negative")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("config: rate limit must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
