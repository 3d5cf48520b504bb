// Package config provides configuration constants and environment loading for the SQL playground.
package config

import "time"

// Query limits.
const (
	MaxSQLLength             = 20000
	DefaultQueryTimeoutMs    = 10000
	DefaultMaxQueryTimeoutMs = 60000
	MaxRequestBodyBytes      = 100 << 10
)

// Server defaults.
const (
	DefaultPort              = "4000"
	DefaultMaxConnections    = 10
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 15 * time.Minute
	ShutdownTimeout          = 10 * time.Second
	HealthProbeTimeout       = 5 * time.Second
	DefaultLogLevel          = "info"
)

// Client defaults.
const (
	DefaultServerURL   = "http://localhost:4000"
	HealthPollInterval = 30 * time.Second
)

// DefaultProductionOrigins is the CORS allow-list used in production when CORS_ORIGINS is unset.
var DefaultProductionOrigins = []string{"https://better-skul.vercel.app"}

// Driver identifies a supported database backend.
type Driver string

// Supported drivers.
const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverDuckDB   Driver = "duckdb"
)

// Mode is the run mode of the process.
type Mode string

// Run modes.
const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Environment variable names.
const (
	EnvAppEnv            = "APP_ENV"
	EnvNodeEnv           = "NODE_ENV"
	EnvPort              = "PORT"
	EnvLogLevel          = "LOG_LEVEL"
	EnvDBDriver          = "DB_DRIVER"
	EnvDBHost            = "DB_HOST"
	EnvDBUser            = "DB_USER"
	EnvDBPassword        = "DB_PASSWORD"
	EnvDBName            = "DB_NAME"
	EnvDBPort            = "DB_PORT"
	EnvDBPath            = "DB_PATH"
	EnvDBMaxConnections  = "DB_MAX_CONNECTIONS"
	EnvCORSOrigins       = "CORS_ORIGINS"
	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvMaxQueryTimeoutMs = "QUERY_MAX_TIMEOUT_MS"
)
