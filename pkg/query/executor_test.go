package query

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nnnkkk7/sql-playground/pkg/config"
	"github.com/nnnkkk7/sql-playground/pkg/connection"
)

// setupTestExecutor creates a test executor with in-memory DuckDB.
func setupTestExecutor(t *testing.T, maxConns int) (*Executor, *connection.Manager) {
	t.Helper()

	mgr, err := connection.Open(config.DBConfig{Driver: config.DriverDuckDB, MaxConnections: maxConns})
	if err != nil {
		t.Fatalf("failed to open DuckDB: %v", err)
	}

	t.Cleanup(func() {
		if err := mgr.Close(); err != nil {
			t.Errorf("failed to close manager: %v", err)
		}
	})

	logger, _ := test.NewNullLogger()
	return NewExecutor(mgr, NewTracker(), logger), mgr
}

func mustExecute(t *testing.T, e *Executor, sql string, params ...any) *Outcome {
	t.Helper()
	out, err := e.Execute(context.Background(), Request{SQL: sql, Parameters: params})
	if err != nil {
		t.Fatalf("Execute(%q) error = %v", sql, err)
	}
	return out
}

func assertReleased(t *testing.T, mgr *connection.Manager) {
	t.Helper()
	stats := mgr.Stats()
	if stats.Acquired != stats.Released {
		t.Errorf("acquired = %d, released = %d", stats.Acquired, stats.Released)
	}
	if stats.InUse != 0 {
		t.Errorf("connections in use = %d, want 0", stats.InUse)
	}
}

// TestExecutor_Select tests the SELECT envelope.
func TestExecutor_Select(t *testing.T) {
	executor, mgr := setupTestExecutor(t, 2)

	out := mustExecute(t, executor, "SELECT 1 AS a, 'x' AS b")

	if out.Kind != KindSelect {
		t.Fatalf("Kind = %s, want %s", out.Kind, KindSelect)
	}
	if out.Mutation != nil {
		t.Error("Mutation should be nil for a SELECT outcome")
	}
	if diff := cmp.Diff([]string{"a", "b"}, out.RowSet.Fields); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}

	encoded, err := json.Marshal(out.RowSet.Rows)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(encoded), `[{"a":1,"b":"x"}]`; got != want {
		t.Errorf("rows = %s, want %s", got, want)
	}
	if out.QueryID == "" {
		t.Error("QueryID should be set")
	}
	if out.ExecutionTimeMs() < 0 {
		t.Errorf("ExecutionTimeMs() = %d, want >= 0", out.ExecutionTimeMs())
	}

	assertReleased(t, mgr)
}

// TestExecutor_EmptySelect tests that an empty result still reports its fields.
func TestExecutor_EmptySelect(t *testing.T) {
	executor, mgr := setupTestExecutor(t, 2)

	mustExecute(t, executor, "CREATE TABLE empty_t (id INTEGER, name VARCHAR)")
	out := mustExecute(t, executor, "SELECT * FROM empty_t")

	if out.Kind != KindSelect {
		t.Fatalf("Kind = %s, want %s", out.Kind, KindSelect)
	}
	if out.RowSet.Rows == nil || len(out.RowSet.Rows) != 0 {
		t.Errorf("Rows = %#v, want empty non-nil slice", out.RowSet.Rows)
	}
	if diff := cmp.Diff([]string{"id", "name"}, out.RowSet.Fields); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}

	assertReleased(t, mgr)
}

// TestExecutor_Modify tests the MODIFY envelope for DDL and DML.
func TestExecutor_Modify(t *testing.T) {
	executor, mgr := setupTestExecutor(t, 2)

	ddl := mustExecute(t, executor, "CREATE TABLE t (id INTEGER)")
	if ddl.Kind != KindModify {
		t.Fatalf("DDL Kind = %s, want %s", ddl.Kind, KindModify)
	}
	if ddl.Mutation.Message != DefaultModifyMessage {
		t.Errorf("Message = %q, want %q", ddl.Mutation.Message, DefaultModifyMessage)
	}

	insert := mustExecute(t, executor, "INSERT INTO t VALUES (1), (2), (3)")
	if insert.Kind != KindModify {
		t.Fatalf("INSERT Kind = %s, want %s", insert.Kind, KindModify)
	}
	if insert.Mutation.AffectedRows != 3 {
		t.Errorf("AffectedRows = %d, want 3", insert.Mutation.AffectedRows)
	}
	if insert.RowSet != nil {
		t.Error("RowSet should be nil for a MODIFY outcome")
	}

	update := mustExecute(t, executor, "UPDATE t SET id = id + 10 WHERE id > 1")
	if update.Mutation.AffectedRows != 2 {
		t.Errorf("UPDATE AffectedRows = %d, want 2", update.Mutation.AffectedRows)
	}

	assertReleased(t, mgr)
}

// TestExecutor_Parameters tests positional bind parameters.
func TestExecutor_Parameters(t *testing.T) {
	executor, _ := setupTestExecutor(t, 2)

	mustExecute(t, executor, "CREATE TABLE users (id INTEGER, name VARCHAR)")
	mustExecute(t, executor, "INSERT INTO users VALUES (?, ?)", int64(1), "alice")
	mustExecute(t, executor, "INSERT INTO users VALUES (?, ?)", int64(2), "bob")

	out := mustExecute(t, executor, "SELECT name FROM users WHERE id = ?", int64(2))
	if len(out.RowSet.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(out.RowSet.Rows))
	}
	got, _ := out.RowSet.Rows[0].Get("name")
	if got != "bob" {
		t.Errorf("name = %v, want bob", got)
	}

	// A parameter is a value, never SQL.
	out = mustExecute(t, executor, "SELECT count(*) AS n FROM users WHERE name = ?", "x' OR '1'='1")
	n, _ := out.RowSet.Rows[0].Get("n")
	if n != int64(0) {
		t.Errorf("n = %v (%T), want 0", n, n)
	}
}

// TestExecutor_ErrorHandling tests that failures release the connection and keep the cause.
func TestExecutor_ErrorHandling(t *testing.T) {
	executor, mgr := setupTestExecutor(t, 1)

	tests := []struct {
		name string
		sql  string
	}{
		{name: "syntax error", sql: "SELEC 1"},
		{name: "missing table", sql: "SELECT * FROM nope"},
		{name: "missing table exec", sql: "INSERT INTO nope VALUES (1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executor.Execute(context.Background(), Request{SQL: tt.sql})
			if err == nil {
				t.Fatal("expected error")
			}
			var verr *ValidationError
			if errors.As(err, &verr) {
				t.Errorf("got validation error %v, want database error", err)
			}
			assertReleased(t, mgr)
		})
	}

	// The single connection is usable again after every failure.
	mustExecute(t, executor, "SELECT 1")
	if executor.Tracker().InFlight() != 0 {
		t.Errorf("InFlight() = %d, want 0", executor.Tracker().InFlight())
	}
}

// TestExecutor_Validation tests that invalid requests never reach the pool.
func TestExecutor_Validation(t *testing.T) {
	executor, mgr := setupTestExecutor(t, 1)

	tests := []struct {
		name     string
		sql      string
		wantCode string
	}{
		{name: "empty", sql: "", wantCode: CodeInvalidSQL},
		{name: "too long", sql: strings.Repeat("a", config.MaxSQLLength+1), wantCode: CodeQueryTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executor.Execute(context.Background(), Request{SQL: tt.sql})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if verr.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", verr.Code, tt.wantCode)
			}
		})
	}

	if got := mgr.Stats().Acquired; got != 0 {
		t.Errorf("Acquired = %d, want 0", got)
	}
}

// TestExecutor_Timeout tests that the context deadline caps execution on DuckDB.
func TestExecutor_Timeout(t *testing.T) {
	executor, mgr := setupTestExecutor(t, 1)

	_, err := executor.Execute(context.Background(), Request{
		SQL:     "SELECT count(*) FROM range(1000000000) a, range(1000000000) b",
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	assertReleased(t, mgr)
}

// TestExecutor_EffectiveTimeout tests default selection and clamping.
func TestExecutor_EffectiveTimeout(t *testing.T) {
	executor, _ := setupTestExecutor(t, 1)
	executor.SetMaxTimeout(30 * time.Second)

	tests := []struct {
		name      string
		requested time.Duration
		want      time.Duration
	}{
		{name: "default", requested: 0, want: 10 * time.Second},
		{name: "negative", requested: -time.Second, want: 10 * time.Second},
		{name: "within bound", requested: 2 * time.Second, want: 2 * time.Second},
		{name: "clamped", requested: time.Hour, want: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := executor.EffectiveTimeout(tt.requested); got != tt.want {
				t.Errorf("EffectiveTimeout(%v) = %v, want %v", tt.requested, got, tt.want)
			}
		})
	}
}

// TestExecutor_Concurrent tests that concurrent requests never leak connections.
func TestExecutor_Concurrent(t *testing.T) {
	executor, mgr := setupTestExecutor(t, 3)
	mustExecute(t, executor, "CREATE TABLE c (id INTEGER)")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sql := "SELECT CAST(? AS BIGINT) AS id"
			if i%3 == 0 {
				sql = "SELECT * FROM missing_table"
			}
			_, err := executor.Execute(context.Background(), Request{SQL: sql, Parameters: []any{int64(i)}})
			if err != nil && i%3 != 0 {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	assertReleased(t, mgr)
	if got := mgr.Stats().Acquired; got != 21 {
		t.Errorf("Acquired = %d, want 21", got)
	}
}

// TestExecutor_Logging tests that statements are logged with their query ID.
func TestExecutor_Logging(t *testing.T) {
	mgr, err := connection.Open(config.DBConfig{Driver: config.DriverDuckDB, MaxConnections: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	executor := NewExecutor(mgr, nil, logger)

	out := mustExecute(t, executor, "SELECT 42 AS answer")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Data["query_id"] != out.QueryID {
		t.Errorf("query_id = %v, want %s", entry.Data["query_id"], out.QueryID)
	}
	if entry.Data["route"] != "query" {
		t.Errorf("route = %v, want query", entry.Data["route"])
	}
}
