package query

import (
	"database/sql"
	"fmt"
)

// ReadRowSet drains rows into a RowSet. Field names come from column metadata.
func ReadRowSet(rows *sql.Rows) (*RowSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	if columns == nil {
		columns = []string{}
	}
	typeNames := ColumnTypeNames(rows, len(columns))

	resultRows := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, val := range values {
			values[i] = ConvertValue(typeNames[i], val)
		}
		resultRows = append(resultRows, NewRow(columns, values))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &RowSet{Fields: columns, Rows: resultRows}, nil
}

// MutationFromResult reads the side-effect counters of a statement.
// Unavailable counters default to zero affected rows and a null insert ID.
func MutationFromResult(res sql.Result) *Mutation {
	m := &Mutation{Message: DefaultModifyMessage}
	if res == nil {
		return m
	}
	if affected, err := res.RowsAffected(); err == nil {
		m.AffectedRows = affected
	}
	if id, err := res.LastInsertId(); err == nil {
		m.InsertID = &id
	}
	return m
}

// rowSetOutcome and mutationOutcome are the only constructors of Outcome, so the
// kind and payload always agree.
func rowSetOutcome(rs *RowSet) *Outcome {
	return &Outcome{Kind: KindSelect, RowSet: rs}
}

func mutationOutcome(m *Mutation) *Outcome {
	return &Outcome{Kind: KindModify, Mutation: m}
}
