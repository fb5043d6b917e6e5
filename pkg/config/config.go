// Package config loads the bookstore service settings from the environment.
// A .env file in the working directory is read first when present; variables
// already set in the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/united-manufacturing-hub/umh-utils/env"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"

	LogDevelopment = "DEVELOPMENT"
	LogProduction  = "PRODUCTION"
)

type Postgres struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type Mongo struct {
	URI      string
	Database string
}

type RateLimit struct {
	// RPS is the sustained requests per second per client. Zero disables limiting.
	RPS   float64
	Burst int
}

type Breaker struct {
	// MaxFailures database errors within a minute open the breaker. Zero
	// disables it.
	MaxFailures int
	OpenFor     time.Duration
}

type Config struct {
	Port           int
	LogLevel       string
	StoreBackend   string
	Postgres       Postgres
	Mongo          Mongo
	SQLitePath     string
	RateLimit      RateLimit
	Breaker        Breaker
	SeedData       bool
	FaultInjection bool
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var (
		cfg  Config
		errs []error
	)
	str := func(key, fallback string) string {
		v, err := env.GetAsString(key, false, fallback)
		errs = append(errs, err)
		return v
	}
	num := func(key string, fallback int) int {
		v, err := env.GetAsInt(key, false, fallback)
		errs = append(errs, err)
		return v
	}
	flag := func(key string, fallback bool) bool {
		v, err := env.GetAsBool(key, false, fallback)
		errs = append(errs, err)
		return v
	}

	cfg.Port = num("PORT", 8080)
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(str("LOGGING_LEVEL", LogProduction)))
	cfg.StoreBackend = str("STORE_BACKEND", BackendMongo)
	cfg.Postgres = Postgres{
		Host:     str("DB_HOST", "postgres"),
		Port:     num("DB_PORT", 5432),
		User:     str("DB_USER", "program"),
		Password: str("DB_PASSWORD", "test"),
		Name:     str("DB_NAME", "bookstore"),
	}
	cfg.Mongo = Mongo{
		URI:      str("MONGO_URI", "mongodb://localhost:27017"),
		Database: str("MONGO_DATABASE", "bookstore"),
	}
	cfg.SQLitePath = str("SQLITE_PATH", "bookstore.db")

	rps, err := env.GetAsFloat64("RATE_LIMIT_RPS", false, 0)
	errs = append(errs, err)
	cfg.RateLimit = RateLimit{RPS: rps, Burst: num("RATE_LIMIT_BURST", 20)}

	cfg.Breaker = Breaker{
		MaxFailures: num("BREAKER_MAX_FAILURES", 5),
		OpenFor:     time.Duration(num("BREAKER_OPEN_SECONDS", 30)) * time.Second,
	}

	cfg.SeedData = flag("SEED_DATA", false)
	cfg.FaultInjection = flag("FAULT_INJECTION", false)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMongo, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of %s, %s, %s; got %q",
			BackendMongo, BackendPostgres, BackendSQLite, c.StoreBackend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative: %g", c.RateLimit.RPS)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is on")
	}
	if c.Breaker.MaxFailures < 0 || c.Breaker.OpenFor <= 0 {
		return fmt.Errorf("BREAKER_MAX_FAILURES must not be negative and BREAKER_OPEN_SECONDS must be positive")
	}
	return nil
}
