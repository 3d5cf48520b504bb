// Package query executes SQL submitted to the playground and normalizes driver results.
package query

import (
	"bytes"
	"encoding/json"
	"time"
)

// Kind discriminates the two result envelopes.
type Kind string

// Result kinds.
const (
	KindSelect Kind = "SELECT"
	KindModify Kind = "MODIFY"
)

// DefaultModifyMessage is reported for statements that produce no rows.
const DefaultModifyMessage = "Query executed successfully"

// Outcome is the normalized result of one statement. Exactly one of RowSet and
// Mutation is set, matching Kind.
type Outcome struct {
	QueryID       string
	Kind          Kind
	RowSet        *RowSet
	Mutation      *Mutation
	ExecutionTime time.Duration
}

// ExecutionTimeMs returns the execution time in whole milliseconds.
func (o *Outcome) ExecutionTimeMs() int64 {
	return o.ExecutionTime.Milliseconds()
}

// RowSet is the result of a row-producing statement.
type RowSet struct {
	Fields []string
	Rows   []Row
}

// Mutation is the result of a statement that produced no rows.
type Mutation struct {
	AffectedRows int64
	InsertID     *int64
	WarningCount int64
	Message      string
}

// Row is one record. It keeps column order when encoded as a JSON object.
type Row struct {
	columns []string
	values  []any
}

// NewRow builds a row from parallel column and value slices.
func NewRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

// Get returns the value of the named column. With duplicate names the last one wins.
func (r Row) Get(column string) (any, bool) {
	for i := len(r.columns) - 1; i >= 0; i-- {
		if r.columns[i] == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// MarshalJSON encodes the row as an object in column order. A duplicated column
// name keeps its first position and takes its last value.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	written := 0
	seen := make(map[string]bool, len(r.columns))
	for _, col := range r.columns {
		if seen[col] {
			continue
		}
		seen[col] = true

		val, _ := r.Get(col)
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}

		if written > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(encoded)
		written++
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
