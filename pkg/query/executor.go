package query

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sql-playground/pkg/config"
	"github.com/nnnkkk7/sql-playground/pkg/connection"
)

// Executor runs one statement per request on an exclusively held pooled connection.
//
// The connection is released on every path, exactly once, before Execute returns.
// Database errors are returned wrapped and are never retried.
type Executor struct {
	mgr            *connection.Manager
	classifier     *Classifier
	tracker        *Tracker
	log            logrus.FieldLogger
	defaultTimeout time.Duration
	maxTimeout     time.Duration
}

// NewExecutor creates a new query executor.
func NewExecutor(mgr *connection.Manager, tracker *Tracker, log logrus.FieldLogger) *Executor {
	if tracker == nil {
		tracker = NewTracker()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Executor{
		mgr:            mgr,
		classifier:     NewClassifier(),
		tracker:        tracker,
		log:            log,
		defaultTimeout: config.DefaultQueryTimeoutMs * time.Millisecond,
		maxTimeout:     config.DefaultMaxQueryTimeoutMs * time.Millisecond,
	}
}

// SetMaxTimeout sets the upper bound applied to requested timeouts.
func (e *Executor) SetMaxTimeout(d time.Duration) {
	if d > 0 {
		e.maxTimeout = d
	}
}

// Tracker returns the in-flight statement tracker.
func (e *Executor) Tracker() *Tracker {
	return e.tracker
}

// EffectiveTimeout resolves the execution cap for a requested timeout.
func (e *Executor) EffectiveTimeout(requested time.Duration) time.Duration {
	if requested <= 0 {
		return e.defaultTimeout
	}
	if requested > e.maxTimeout {
		return e.maxTimeout
	}
	return requested
}

// Execute validates req, runs it and normalizes the result.
func (e *Executor) Execute(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timeout := e.EffectiveTimeout(req.Timeout)

	conn, err := e.mgr.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Release(); err != nil {
			e.log.WithError(err).Warn("failed to release connection")
		}
	}()

	applied, err := conn.SetExecutionTimeout(ctx, timeout)
	if err != nil {
		return nil, err
	}

	execCtx := ctx
	if !applied {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	route := e.classifier.Route(req.SQL)
	stmt := e.tracker.Begin(req.SQL, route)
	defer e.tracker.Finish(stmt.ID)

	log := e.log.WithFields(logrus.Fields{
		"query_id": stmt.ID,
		"route":    route.String(),
		"params":   len(req.Parameters),
	})

	start := time.Now()
	var outcome *Outcome
	if route == RouteQuery {
		outcome, err = e.query(execCtx, conn, req)
	} else {
		outcome, err = e.exec(execCtx, conn, req)
	}
	elapsed := time.Since(start)

	if err != nil {
		log.WithError(err).WithField("elapsed", elapsed).Debug("statement failed")
		return nil, err
	}

	outcome.QueryID = stmt.ID
	outcome.ExecutionTime = elapsed
	log.WithFields(logrus.Fields{
		"kind":    outcome.Kind,
		"elapsed": elapsed,
	}).Debug("statement executed")

	return outcome, nil
}

func (e *Executor) query(ctx context.Context, conn *connection.Conn, req Request) (*Outcome, error) {
	rows, err := conn.QueryContext(ctx, req.SQL, req.Parameters...)
	if err != nil {
		return nil, fmt.Errorf("query execution error: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rs, err := ReadRowSet(rows)
	if err != nil {
		return nil, err
	}

	// A statement routed as a query that produced no columns had side effects only.
	if len(rs.Fields) == 0 {
		return mutationOutcome(&Mutation{Message: DefaultModifyMessage}), nil
	}
	return rowSetOutcome(rs), nil
}

func (e *Executor) exec(ctx context.Context, conn *connection.Conn, req Request) (*Outcome, error) {
	res, err := conn.ExecContext(ctx, req.SQL, req.Parameters...)
	if err != nil {
		return nil, fmt.Errorf("execution error: %w", err)
	}
	return mutationOutcome(MutationFromResult(res)), nil
}
