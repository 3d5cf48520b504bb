// Package health probes database liveness.
package health

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sql-playground/pkg/config"
)

// Probe results.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

const probeSQL = "SELECT 1"

// Querier runs a single-row query. *connection.Manager implements it.
type Querier interface {
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
}

// Status is the outcome of one probe.
type Status struct {
	Status    string
	Database  string
	Timestamp time.Time
	Error     string
}

// Healthy reports whether the probe succeeded.
func (s Status) Healthy() bool {
	return s.Status == StatusHealthy
}

// Prober checks that the database answers a trivial query.
type Prober struct {
	db      Querier
	timeout time.Duration
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewProber creates a prober over db.
func NewProber(db Querier, log logrus.FieldLogger) *Prober {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Prober{
		db:      db,
		timeout: config.HealthProbeTimeout,
		log:     log,
		now:     time.Now,
	}
}

// Probe runs the liveness query through the pool.
func (p *Prober) Probe(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var one int
	if err := p.db.QueryRow(ctx, probeSQL).Scan(&one); err != nil {
		p.log.WithError(err).Warn("health probe failed")
		return Status{
			Status:    StatusUnhealthy,
			Database:  DatabaseDisconnected,
			Timestamp: p.now().UTC(),
			Error:     err.Error(),
		}
	}

	return Status{
		Status:    StatusHealthy,
		Database:  DatabaseConnected,
		Timestamp: p.now().UTC(),
	}
}
