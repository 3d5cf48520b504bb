package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/nnnkkk7/sql-playground/pkg/config"
)

// Validation error codes.
const (
	CodeInvalidSQL        = "INVALID_SQL"
	CodeQueryTooLong      = "QUERY_TOO_LONG"
	CodeInvalidParameters = "INVALID_PARAMETERS"
)

// ValidationError reports a request rejected before any database interaction.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Sentinel validation errors.
var (
	ErrSQLRequired = &ValidationError{Code: CodeInvalidSQL, Message: "SQL query must be a non-empty string"}
	ErrSQLTooLong  = &ValidationError{Code: CodeQueryTooLong, Message: "SQL query too long"}
)

// Request is a single query submission.
type Request struct {
	SQL        string
	Parameters []any
	// Timeout is the requested execution cap. Zero means the default.
	Timeout time.Duration
}

// Validate checks the SQL text bounds. Length is counted in code points.
func (r Request) Validate() error {
	if r.SQL == "" {
		return ErrSQLRequired
	}
	if utf8.RuneCountInString(r.SQL) > config.MaxSQLLength {
		return ErrSQLTooLong
	}
	return nil
}

// SQLFromJSON extracts the SQL text from a decoded JSON value. Anything but a
// non-empty string is rejected.
func SQLFromJSON(v any) (string, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", ErrSQLRequired
	}
	return s, nil
}

// ParametersFromJSON converts decoded JSON bind values into driver arguments.
// Only scalars are accepted. Integral numbers bind as int64, others as float64.
func ParametersFromJSON(values []any) ([]any, error) {
	if len(values) == 0 {
		return nil, nil
	}

	args := make([]any, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil, string, bool:
			args[i] = val
		case json.Number:
			if n, err := val.Int64(); err == nil {
				args[i] = n
				continue
			}
			f, err := val.Float64()
			if err != nil {
				return nil, invalidParameter(i, "is not a valid number")
			}
			args[i] = f
		case float64:
			if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
				args[i] = int64(val)
			} else {
				args[i] = val
			}
		default:
			return nil, invalidParameter(i, "must be a string, number, boolean or null")
		}
	}
	return args, nil
}

// TimeoutFromJSON converts a decoded JSON timeout in milliseconds. Missing,
// non-numeric and non-positive values yield zero, which selects the default.
func TimeoutFromJSON(v any) time.Duration {
	var ms float64
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		ms = f
	case float64:
		ms = val
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		ms = f
	default:
		return 0
	}
	if ms <= 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return 0
	}
	if ms > float64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

func invalidParameter(index int, reason string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidParameters,
		Message: fmt.Sprintf("parameter %d %s", index, reason),
	}
}
