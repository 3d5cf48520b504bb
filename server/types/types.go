package types

import (
	"time"

	"github.com/nnnkkk7/sql-playground/pkg/health"
	"github.com/nnnkkk7/sql-playground/pkg/query"
)

// Query API Types

// QueryRequest is the body of POST /query. Fields are loosely typed so that
// wrong types are reported with a stable code instead of a decode failure.
type QueryRequest struct {
	SQL        any `json:"sql"`
	Parameters any `json:"parameters,omitempty"`
	Timeout    any `json:"timeout,omitempty"`
}

// SelectResponse is the envelope for row-producing statements.
type SelectResponse struct {
	Success         bool        `json:"success"`
	Type            query.Kind  `json:"type"`
	RowCount        int         `json:"rowCount"`
	Rows            []query.Row `json:"rows"`
	Fields          []string    `json:"fields"`
	ExecutionTimeMs int64       `json:"executionTimeMs"`
}

// ModifyResponse is the envelope for statements that produce no rows.
type ModifyResponse struct {
	Success         bool       `json:"success"`
	Type            query.Kind `json:"type"`
	AffectedRows    int64      `json:"affectedRows"`
	InsertID        *int64     `json:"insertId"`
	WarningCount    int64      `json:"warningCount"`
	Message         string     `json:"message"`
	ExecutionTimeMs int64      `json:"executionTimeMs"`
}

// NewQueryResponse builds the envelope matching the outcome kind.
func NewQueryResponse(out *query.Outcome) any {
	if out.Kind == query.KindSelect {
		return SelectResponse{
			Success:         true,
			Type:            query.KindSelect,
			RowCount:        len(out.RowSet.Rows),
			Rows:            out.RowSet.Rows,
			Fields:          out.RowSet.Fields,
			ExecutionTimeMs: out.ExecutionTimeMs(),
		}
	}
	return ModifyResponse{
		Success:         true,
		Type:            query.KindModify,
		AffectedRows:    out.Mutation.AffectedRows,
		InsertID:        out.Mutation.InsertID,
		WarningCount:    out.Mutation.WarningCount,
		Message:         out.Mutation.Message,
		ExecutionTimeMs: out.ExecutionTimeMs(),
	}
}

// QueryResult is the client view of any /query response, success or error.
// Rows decode as maps; Fields gives their column order.
type QueryResult struct {
	Success         bool             `json:"success"`
	Type            query.Kind       `json:"type,omitempty"`
	RowCount        int              `json:"rowCount,omitempty"`
	Rows            []map[string]any `json:"rows,omitempty"`
	Fields          []string         `json:"fields,omitempty"`
	AffectedRows    int64            `json:"affectedRows,omitempty"`
	InsertID        *int64           `json:"insertId,omitempty"`
	WarningCount    int64            `json:"warningCount,omitempty"`
	Message         string           `json:"message,omitempty"`
	ExecutionTimeMs int64            `json:"executionTimeMs,omitempty"`
	Error           string           `json:"error,omitempty"`
	Code            string           `json:"code,omitempty"`
	Details         string           `json:"details,omitempty"`
}

// Health API Types

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// TimestampFormat is ISO-8601 with millisecond precision in UTC.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// NewHealthResponse converts a probe result.
func NewHealthResponse(s health.Status) HealthResponse {
	return HealthResponse{
		Status:    s.Status,
		Database:  s.Database,
		Timestamp: s.Timestamp.UTC().Format(TimestampFormat),
		Error:     s.Error,
	}
}

// Healthy reports whether the response describes a healthy database.
func (h HealthResponse) Healthy() bool {
	return h.Status == health.StatusHealthy
}

// ParseTimestamp parses the response timestamp.
func (h HealthResponse) ParseTimestamp() (time.Time, error) {
	return time.Parse(TimestampFormat, h.Timestamp)
}
