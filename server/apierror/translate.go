package apierror

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nnnkkk7/sql-playground/pkg/connection"
)

var mysqlCodes = map[uint16]DriverCode{
	1064: DriverParseError,
	1149: DriverParseError,
	1146: DriverNoSuchTable,
	1049: DriverBadDB,
	1062: DriverDupEntry,
	1586: DriverDupEntry,
	1044: DriverAccessDenied,
	1045: DriverAccessDenied,
	1142: DriverAccessDenied,
	1227: DriverAccessDenied,
	3024: DriverTimedOut, // ER_QUERY_TIMEOUT, raised by MAX_EXECUTION_TIME
	1317: DriverTimedOut,
	1969: DriverTimedOut,
	2006: DriverConnectionLost,
	2013: DriverConnectionLost,
}

var postgresCodes = map[string]DriverCode{
	"42601": DriverParseError,
	"42P01": DriverNoSuchTable,
	"3D000": DriverBadDB,
	"23505": DriverDupEntry,
	"28000": DriverAccessDenied,
	"28P01": DriverAccessDenied,
	"42501": DriverAccessDenied,
	"57014": DriverTimedOut, // query_canceled, raised by statement_timeout
	"57P01": DriverConnectionLost,
	"08006": DriverConnectionLost,
	"08003": DriverConnectionLost,
	"08001": DriverConnRefused,
}

// Translate maps a driver error to its symbolic code and the driver message.
// Errors no rule recognizes map to DriverUnknown.
func Translate(err error) (DriverCode, string) {
	if err == nil {
		return DriverUnknown, ""
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlCodes[myErr.Number], myErr.Message
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return postgresCodes[pgErr.Code], pgErr.Message
	}

	var duckErr *duckdb.Error
	if errors.As(err, &duckErr) {
		return duckDBCode(duckErr), duckErr.Msg
	}

	message := err.Error()

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return DriverTimedOut, message
	case errors.Is(err, syscall.ECONNREFUSED):
		return DriverConnRefused, message
	case errors.As(err, &netErr) && netErr.Timeout():
		return DriverTimedOut, message
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, mysql.ErrInvalidConn), errors.Is(err, sql.ErrConnDone):
		return DriverConnectionLost, message
	}

	var acqErr *connection.AcquireError
	if errors.As(err, &acqErr) {
		return DriverConnRefused, message
	}

	return DriverUnknown, message
}

func duckDBCode(err *duckdb.Error) DriverCode {
	switch err.Type {
	case duckdb.ErrorTypeParser, duckdb.ErrorTypeSyntax:
		return DriverParseError
	case duckdb.ErrorTypeCatalog:
		return catalogCode(err.Msg)
	case duckdb.ErrorTypeConstraint:
		if strings.Contains(strings.ToLower(err.Msg), "duplicate key") {
			return DriverDupEntry
		}
	case duckdb.ErrorTypePermission:
		return DriverAccessDenied
	case duckdb.ErrorTypeInterrupt:
		return DriverTimedOut
	case duckdb.ErrorTypeConnection:
		return DriverConnectionLost
	}
	return DriverUnknown
}

// catalogCode tells a missing table from a missing database in a catalog error.
func catalogCode(msg string) DriverCode {
	body := strings.ToLower(msg)
	if _, rest, ok := strings.Cut(body, "error: "); ok {
		body = rest
	}
	switch {
	case strings.HasPrefix(body, "table with name"),
		strings.HasPrefix(body, "table") && strings.Contains(body, "does not exist"):
		return DriverNoSuchTable
	case strings.HasPrefix(body, "catalog"),
		strings.HasPrefix(body, "database"),
		strings.HasPrefix(body, "schema"):
		return DriverBadDB
	}
	return DriverUnknown
}
