package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	Mode              Mode
	Port              string
	LogLevel          string
	DB                DBConfig
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	MaxQueryTimeout   time.Duration
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Driver         Driver
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	Path           string // DuckDB database file, empty for in-memory
	MaxConnections int
}

// IsProduction reports whether the process runs in production mode.
func (c Config) IsProduction() bool {
	return c.Mode == ModeProduction
}

// EnvFile returns the dotenv file read for the given mode.
func EnvFile(mode Mode) string {
	if mode == ModeProduction {
		return ".env"
	}
	return ".env.development"
}

// Load reads the dotenv file for the current mode, then builds the config from the environment.
// Variables already present in the environment take precedence over the file; a missing file is not an error.
func Load() (Config, error) {
	mode := modeFrom(os.Getenv)
	file := EnvFile(mode)
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function. Unset values take defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Mode:              modeFrom(getenv),
		Port:              valueOr(getenv(EnvPort), DefaultPort),
		LogLevel:          valueOr(getenv(EnvLogLevel), DefaultLogLevel),
		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,
		MaxQueryTimeout:   DefaultMaxQueryTimeoutMs * time.Millisecond,
		DB: DBConfig{
			Driver:         Driver(strings.ToLower(valueOr(getenv(EnvDBDriver), string(DriverMySQL)))),
			Host:           getenv(EnvDBHost),
			Port:           getenv(EnvDBPort),
			User:           getenv(EnvDBUser),
			Password:       getenv(EnvDBPassword),
			Name:           getenv(EnvDBName),
			Path:           getenv(EnvDBPath),
			MaxConnections: DefaultMaxConnections,
		},
	}

	switch cfg.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverDuckDB:
	default:
		return Config{}, fmt.Errorf("unsupported %s %q", EnvDBDriver, cfg.DB.Driver)
	}

	var err error
	if cfg.DB.MaxConnections, err = positiveInt(getenv, EnvDBMaxConnections, DefaultMaxConnections); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRequests, err = positiveInt(getenv, EnvRateLimitRequests, DefaultRateLimitRequests); err != nil {
		return Config{}, err
	}
	maxTimeoutMs, err := positiveInt(getenv, EnvMaxQueryTimeoutMs, DefaultMaxQueryTimeoutMs)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxQueryTimeout = time.Duration(maxTimeoutMs) * time.Millisecond

	if raw := getenv(EnvRateLimitWindow); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil || window <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvRateLimitWindow, raw)
		}
		cfg.RateLimitWindow = window
	}

	if cfg.IsProduction() {
		cfg.CORSOrigins = splitList(getenv(EnvCORSOrigins))
		if len(cfg.CORSOrigins) == 0 {
			cfg.CORSOrigins = append([]string(nil), DefaultProductionOrigins...)
		}
	} else {
		cfg.CORSOrigins = []string{"*"}
	}

	return cfg, nil
}

// modeFrom resolves the run mode. APP_ENV wins over NODE_ENV; anything but "production" is development.
func modeFrom(getenv func(string) string) Mode {
	raw := getenv(EnvAppEnv)
	if raw == "" {
		raw = getenv(EnvNodeEnv)
	}
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeProduction)) {
		return ModeProduction
	}
	return ModeDevelopment
}

func positiveInt(getenv func(string) string, name string, def int) (int, error) {
	raw := getenv(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
