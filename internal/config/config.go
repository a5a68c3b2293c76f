// Package config loads service settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Postgres struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DB       string `envconfig:"POSTGRES_DB" default:"governance"`
}

// DSN returns the lib/pq connection URL.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

type Config struct {
	Postgres

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"governance.db"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:"0.0.0.0:8080"`
	JWTSecret       string        `envconfig:"JWT_SECRET"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	NATSURL string `envconfig:"NATS_URL"`

	TallyCacheTTL  time.Duration `envconfig:"TALLY_CACHE_TTL" default:"5s"`
	TallyCacheSize int           `envconfig:"TALLY_CACHE_SIZE" default:"1024"`

	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"0"`

	EligibleRoles []string `envconfig:"GOVERNANCE_ELIGIBLE_ROLES" default:"user"`
	OpenProposals bool     `envconfig:"GOVERNANCE_OPEN_PROPOSALS" default:"false"`
}

// Load reads .env when present and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.TallyCacheTTL < 0 {
		return fmt.Errorf("TALLY_CACHE_TTL must not be negative")
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("SWEEP_INTERVAL must not be negative")
	}
	return nil
}
