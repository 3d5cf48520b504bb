package query

import (
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
)

// Value categories used to decode scanned values.
const (
	categoryInteger  = "integer"
	categoryUnsigned = "unsigned"
	categoryFloat    = "float"
	categoryUUID     = "uuid"
	categoryText     = "text"
)

// TypeMapper converts scanned driver values into JSON-friendly values using the
// column's database type name.
//
// Text-protocol drivers (MySQL without prepared statements) return every value as
// []byte, so numeric columns are parsed back into numbers. DECIMAL stays a string
// to keep its precision. Any remaining binary value is stringified.
type TypeMapper struct {
	categories map[string]string
}

// NewTypeMapper creates a new type mapper with default mappings.
func NewTypeMapper() *TypeMapper {
	return &TypeMapper{
		categories: map[string]string{
			"TINYINT":            categoryInteger,
			"SMALLINT":           categoryInteger,
			"MEDIUMINT":          categoryInteger,
			"INT":                categoryInteger,
			"INTEGER":            categoryInteger,
			"BIGINT":             categoryInteger,
			"YEAR":               categoryInteger,
			"INT2":               categoryInteger,
			"INT4":               categoryInteger,
			"INT8":               categoryInteger,
			"UNSIGNED TINYINT":   categoryUnsigned,
			"UNSIGNED SMALLINT":  categoryUnsigned,
			"UNSIGNED MEDIUMINT": categoryUnsigned,
			"UNSIGNED INT":       categoryUnsigned,
			"UNSIGNED BIGINT":    categoryUnsigned,
			"UTINYINT":           categoryUnsigned,
			"USMALLINT":          categoryUnsigned,
			"UINTEGER":           categoryUnsigned,
			"UBIGINT":            categoryUnsigned,
			"FLOAT":              categoryFloat,
			"DOUBLE":             categoryFloat,
			"REAL":               categoryFloat,
			"FLOAT4":             categoryFloat,
			"FLOAT8":             categoryFloat,
			"UUID":               categoryUUID,
		},
	}
}

// Category returns the value category for a database type name.
func (m *TypeMapper) Category(dbType string) string {
	if c, ok := m.categories[strings.ToUpper(dbType)]; ok {
		return c
	}
	return categoryText
}

// Convert converts one scanned value.
func (m *TypeMapper) Convert(dbType string, val any) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case []byte:
		return m.convertBytes(dbType, v)
	case float64:
		return finiteOrString(v)
	case float32:
		return finiteOrString(float64(v))
	case time.Time, *big.Int:
		return v
	case duckdb.Decimal:
		return v.String()
	case duckdb.UUID:
		return uuid.UUID(v).String()
	case *duckdb.UUID:
		return uuid.UUID(*v).String()
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}

func (m *TypeMapper) convertBytes(dbType string, b []byte) any {
	switch m.Category(dbType) {
	case categoryInteger:
		if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			return n
		}
	case categoryUnsigned:
		if n, err := strconv.ParseUint(string(b), 10, 64); err == nil {
			return n
		}
	case categoryFloat:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			return finiteOrString(f)
		}
	case categoryUUID:
		if len(b) == 16 {
			return uuid.UUID(b).String()
		}
	}
	return string(b)
}

// finiteOrString keeps JSON encodable: NaN and infinities become strings.
func finiteOrString(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}

// ColumnTypeNames returns the database type name of each column, or empty names
// when the driver does not report them.
func ColumnTypeNames(rows *sql.Rows, n int) []string {
	names := make([]string, n)
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return names
	}
	for i := 0; i < n && i < len(columnTypes); i++ {
		names[i] = columnTypes[i].DatabaseTypeName()
	}
	return names
}

// defaultTypeMapper is the package-level type mapper instance.
var defaultTypeMapper = NewTypeMapper()

// ConvertValue is a convenience function using the default mapper.
func ConvertValue(dbType string, val any) any {
	return defaultTypeMapper.Convert(dbType, val)
}
