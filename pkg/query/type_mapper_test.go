package query

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestTypeMapper_Category(t *testing.T) {
	mapper := NewTypeMapper()

	testCases := []struct {
		dbType   string
		expected string
	}{
		{"BIGINT", categoryInteger},
		{"int", categoryInteger},
		{"INT4", categoryInteger},
		{"YEAR", categoryInteger},
		{"UNSIGNED BIGINT", categoryUnsigned},
		{"UBIGINT", categoryUnsigned},
		{"DOUBLE", categoryFloat},
		{"float8", categoryFloat},
		{"UUID", categoryUUID},
		{"DECIMAL", categoryText},
		{"VARCHAR", categoryText},
		{"", categoryText},
	}

	for _, tc := range testCases {
		t.Run(tc.dbType, func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, mapper.Category(tc.dbType)); diff != "" {
				t.Errorf("Category(%s) mismatch (-want +got):\n%s", tc.dbType, diff)
			}
		})
	}
}

func TestTypeMapper_Convert(t *testing.T) {
	mapper := NewTypeMapper()
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	testCases := []struct {
		name     string
		dbType   string
		val      any
		expected any
	}{
		{"nil", "INT", nil, nil},
		{"mysql int bytes", "INT", []byte("42"), int64(42)},
		{"mysql negative bigint", "BIGINT", []byte("-7"), int64(-7)},
		{"mysql unsigned", "UNSIGNED BIGINT", []byte("18446744073709551615"), uint64(math.MaxUint64)},
		{"mysql double", "DOUBLE", []byte("1.5"), 1.5},
		{"mysql decimal stays text", "DECIMAL", []byte("10.20"), "10.20"},
		{"mysql varchar", "VARCHAR", []byte("hello"), "hello"},
		{"unparsable int stays text", "INT", []byte("abc"), "abc"},
		{"binary uuid", "UUID", id[:], id.String()},
		{"native int", "INTEGER", int32(5), int32(5)},
		{"native string", "VARCHAR", "x", "x"},
		{"bool", "BOOLEAN", true, true},
		{"NaN", "DOUBLE", math.NaN(), "NaN"},
		{"infinity", "DOUBLE", math.Inf(1), "+Inf"},
		{"float32", "FLOAT", float32(0.5), 0.5},
		{"time", "TIMESTAMP", ts, ts},
		{"duckdb uuid", "UUID", duckdb.UUID(id), id.String()},
		{"duckdb uuid pointer", "UUID", func() *duckdb.UUID { u := duckdb.UUID(id); return &u }(), id.String()},
		{"uuid stringer", "UUID", id, id.String()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := mapper.Convert(tc.dbType, tc.val)
			if diff := cmp.Diff(tc.expected, result); diff != "" {
				t.Errorf("Convert(%s, %v) mismatch (-want +got):\n%s", tc.dbType, tc.val, diff)
			}
		})
	}
}

func TestTypeMapper_ConvertDecimal(t *testing.T) {
	result := ConvertValue("DECIMAL(10,2)", duckdb.Decimal{Width: 10, Scale: 2, Value: big.NewInt(1025)})
	if diff := cmp.Diff("10.25", result); diff != "" {
		t.Errorf("Convert(DECIMAL) mismatch (-want +got):\n%s", diff)
	}
}
