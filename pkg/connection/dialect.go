package connection

import (
	"fmt"
	"net"
	"net/url"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/nnnkkk7/sql-playground/pkg/config"
)

// Dialect describes the engine-specific parts of the pool adapter.
type Dialect interface {
	// Name returns the configured driver name.
	Name() config.Driver
	// DriverName returns the database/sql driver to open.
	DriverName() string
	// DSN builds the data source name from the connection settings.
	DSN(cfg config.DBConfig) string
	// SessionTimeoutSQL returns the statement that caps statement execution time on a single
	// connection. ok is false when the engine has no such setting.
	SessionTimeoutSQL(timeout time.Duration) (stmt string, ok bool)
}

// DialectFor returns the dialect for a configured driver.
func DialectFor(driver config.Driver) (Dialect, error) {
	switch driver {
	case config.DriverMySQL:
		return MySQL{}, nil
	case config.DriverPostgres:
		return Postgres{}, nil
	case config.DriverDuckDB:
		return DuckDB{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// MySQL is the dialect for MySQL and MariaDB through go-sql-driver/mysql.
type MySQL struct{}

func (MySQL) Name() config.Driver { return config.DriverMySQL }
func (MySQL) DriverName() string { return "mysql" }

func (MySQL) DSN(cfg config.DBConfig) string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(hostOrDefault(cfg.Host), portOrDefault(cfg.Port, "3306"))
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Name
	return mc.FormatDSN()
}

// SessionTimeoutSQL uses MAX_EXECUTION_TIME, which MySQL enforces for read-only SELECT statements.
func (MySQL) SessionTimeoutSQL(timeout time.Duration) (string, bool) {
	return fmt.Sprintf("SET SESSION MAX_EXECUTION_TIME=%d", timeout.Milliseconds()), true
}

// Postgres is the dialect for PostgreSQL through pgx's database/sql adapter.
type Postgres struct{}

func (Postgres) Name() config.Driver { return config.DriverPostgres }
func (Postgres) DriverName() string { return "pgx" }

func (Postgres) DSN(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(hostOrDefault(cfg.Host), portOrDefault(cfg.Port, "5432")),
		Path:   "/" + cfg.Name,
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}

func (Postgres) SessionTimeoutSQL(timeout time.Duration) (string, bool) {
	return fmt.Sprintf("SET statement_timeout = %d", timeout.Milliseconds()), true
}

// DuckDB is the dialect for an embedded DuckDB database. It has no per-session execution cap,
// so callers bound execution with a context deadline instead.
type DuckDB struct{}

func (DuckDB) Name() config.Driver { return config.DriverDuckDB }
func (DuckDB) DriverName() string { return "duckdb" }
func (DuckDB) DSN(cfg config.DBConfig) string { return cfg.Path }
func (DuckDB) SessionTimeoutSQL(time.Duration) (string, bool) { return "", false }

func hostOrDefault(host string) string {
	if host == "" {
		return "localhost"
	}
	return host
}

func portOrDefault(port, def string) string {
	if port == "" {
		return def
	}
	return port
}
