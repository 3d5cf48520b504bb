package apierror

import "net/http"

// DriverCode is a symbolic database error code.
type DriverCode string

// Symbolic driver codes. Driver-specific errors are translated to these first.
const (
	DriverParseError     DriverCode = "ER_PARSE_ERROR"
	DriverNoSuchTable    DriverCode = "ER_NO_SUCH_TABLE"
	DriverBadDB          DriverCode = "ER_BAD_DB_ERROR"
	DriverDupEntry       DriverCode = "ER_DUP_ENTRY"
	DriverAccessDenied   DriverCode = "ER_ACCESS_DENIED_ERROR"
	DriverConnectionLost DriverCode = "PROTOCOL_CONNECTION_LOST"
	DriverConnRefused    DriverCode = "ECONNREFUSED"
	DriverTimedOut       DriverCode = "ETIMEDOUT"
	DriverUnknown        DriverCode = ""
)

type classification struct {
	status  int
	code    string
	message string
}

var classifications = map[DriverCode]classification{
	DriverParseError:     {http.StatusBadRequest, CodeSQLSyntaxError, "SQL syntax error"},
	DriverNoSuchTable:    {http.StatusNotFound, CodeTableNotFound, "Table not found"},
	DriverBadDB:          {http.StatusBadRequest, CodeDatabaseNotFound, "Database not found"},
	DriverDupEntry:       {http.StatusConflict, CodeDuplicateEntry, "Duplicate entry"},
	DriverAccessDenied:   {http.StatusForbidden, CodeDBAccessDenied, "Database access denied"},
	DriverConnectionLost: {http.StatusServiceUnavailable, CodeDBConnectionLost, "Database connection lost"},
	DriverConnRefused:    {http.StatusServiceUnavailable, CodeDBConnectionError, "Database connection refused"},
	DriverTimedOut:       {http.StatusGatewayTimeout, CodeQueryTimeout, "Query timeout"},
}

var internalError = classification{http.StatusInternalServerError, CodeInternalError, "Internal server error"}

// Classify maps a symbolic driver code to its HTTP status and stable code.
// Unknown codes are internal errors. The driver message becomes Details.
func Classify(code DriverCode, message string) *APIError {
	c, ok := classifications[code]
	if !ok {
		c = internalError
	}
	return &APIError{
		Status:  c.status,
		Code:    c.code,
		Message: c.message,
		Details: message,
	}
}
