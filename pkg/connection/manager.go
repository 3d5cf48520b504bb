// Package connection owns the bounded database connection pool.
package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nnnkkk7/sql-playground/pkg/config"
)

// ErrClosed is returned by Acquire after the manager has been closed.
var ErrClosed = errors.New("connection manager is closed")

// AcquireError reports a failure to check a connection out of the pool.
type AcquireError struct {
	Err error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("failed to acquire connection: %v", e.Err)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// Manager wraps a *sql.DB pool and hands out exclusive connections.
//
// Every connection returned by Acquire must be released exactly once. The manager
// counts acquisitions and releases so callers and tests can verify that invariant.
type Manager struct {
	db      *sql.DB
	dialect Dialect

	acquired atomic.Int64
	released atomic.Int64

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// NewManager creates a new connection manager for the given database.
func NewManager(db *sql.DB, dialect Dialect) *Manager {
	return &Manager{db: db, dialect: dialect}
}

// Open opens a pool for the configured driver and bounds it to cfg.MaxConnections.
// The pool connects lazily; Open does not contact the database.
func Open(cfg config.DBConfig) (*Manager, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name(), err)
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = config.DefaultMaxConnections
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	return NewManager(db, dialect), nil
}

// Acquire checks one connection out of the pool. It blocks while the pool is at capacity.
func (m *Manager) Acquire(ctx context.Context) (*Conn, error) {
	if m.closed.Load() {
		return nil, &AcquireError{Err: ErrClosed}
	}

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, &AcquireError{Err: err}
	}
	m.acquired.Add(1)

	return &Conn{conn: conn, mgr: m}, nil
}

// QueryRow executes a query that is expected to return at most one row.
func (m *Manager) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return m.db.QueryRowContext(ctx, query, args...)
}

// Dialect returns the engine dialect of the pool.
func (m *Manager) Dialect() Dialect {
	return m.dialect
}

// DB returns the underlying database handle.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Stats is a snapshot of pool usage.
type Stats struct {
	Acquired       int64
	Released       int64
	InUse          int
	Idle           int
	WaitCount      int64
	MaxConnections int
}

// Stats returns the current pool usage.
func (m *Manager) Stats() Stats {
	s := m.db.Stats()
	return Stats{
		Acquired:       m.acquired.Load(),
		Released:       m.released.Load(),
		InUse:          s.InUse,
		Idle:           s.Idle,
		WaitCount:      s.WaitCount,
		MaxConnections: s.MaxOpenConnections,
	}
}

// Close closes the pool. It is safe to call more than once; only the first call closes.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		m.closeErr = m.db.Close()
	})
	return m.closeErr
}

// Conn is a connection checked out for the duration of one request.
type Conn struct {
	conn *sql.Conn
	mgr  *Manager

	releaseOnce sync.Once
	releaseErr  error
}

// SetExecutionTimeout caps statement execution time on this connection only.
// It reports false when the dialect has no session-level cap.
func (c *Conn) SetExecutionTimeout(ctx context.Context, timeout time.Duration) (bool, error) {
	stmt, ok := c.mgr.dialect.SessionTimeoutSQL(timeout)
	if !ok {
		return false, nil
	}
	if _, err := c.conn.ExecContext(ctx, stmt); err != nil {
		return false, fmt.Errorf("failed to set session timeout: %w", err)
	}
	return true, nil
}

// QueryContext runs a row-producing statement on this connection.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

// ExecContext runs a statement that produces no rows on this connection.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// Release returns the connection to the pool. Only the first call has an effect.
func (c *Conn) Release() error {
	c.releaseOnce.Do(func() {
		c.releaseErr = c.conn.Close()
		c.mgr.released.Add(1)
	})
	return c.releaseErr
}
