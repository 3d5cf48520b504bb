package query

import "testing"

func TestClassifier_Route(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name string
		sql  string
		want Route
	}{
		{name: "select", sql: "SELECT * FROM users", want: RouteQuery},
		{name: "lowercase select", sql: "select 1", want: RouteQuery},
		{name: "union", sql: "SELECT 1 UNION SELECT 2", want: RouteQuery},
		{name: "parenthesized", sql: "(SELECT 1)", want: RouteQuery},
		{name: "show tables", sql: "SHOW TABLES", want: RouteQuery},
		{name: "show databases", sql: "SHOW DATABASES", want: RouteQuery},
		{name: "show variables", sql: "SHOW VARIABLES LIKE 'max%'", want: RouteQuery},
		{name: "show status", sql: "SHOW STATUS", want: RouteQuery},
		{name: "show processlist", sql: "SHOW PROCESSLIST", want: RouteQuery},
		{name: "show warnings", sql: "SHOW WARNINGS", want: RouteQuery},
		{name: "call", sql: "CALL p()", want: RouteQuery},
		{name: "check table", sql: "CHECK TABLE t", want: RouteQuery},
		{name: "analyze table", sql: "ANALYZE TABLE t", want: RouteQuery},
		{name: "optimize table", sql: "OPTIMIZE TABLE t", want: RouteQuery},
		{name: "repair table", sql: "REPAIR TABLE t", want: RouteQuery},
		{name: "checksum table", sql: "CHECKSUM TABLE t", want: RouteQuery},
		{name: "help", sql: "HELP 'contents'", want: RouteQuery},
		{name: "checkpoint", sql: "CHECKPOINT", want: RouteExec},
		{name: "describe", sql: "DESCRIBE users", want: RouteQuery},
		{name: "explain", sql: "EXPLAIN SELECT 1", want: RouteQuery},
		{name: "cte", sql: "WITH x AS (SELECT 1) SELECT * FROM x", want: RouteQuery},
		{name: "leading comment", sql: "-- list\nSELECT 1", want: RouteQuery},
		{name: "block comment", sql: "/* a */ SELECT 1", want: RouteQuery},
		{name: "pragma", sql: "PRAGMA table_info('users')", want: RouteQuery},
		{name: "insert", sql: "INSERT INTO users VALUES (1)", want: RouteExec},
		{name: "update", sql: "UPDATE users SET name = 'x'", want: RouteExec},
		{name: "delete", sql: "DELETE FROM users", want: RouteExec},
		{name: "create", sql: "CREATE TABLE users (id INT)", want: RouteExec},
		{name: "drop", sql: "DROP TABLE users", want: RouteExec},
		{name: "set", sql: "SET @a = 1", want: RouteExec},
		{name: "insert returning", sql: "INSERT INTO users VALUES (1) RETURNING id", want: RouteQuery},
		{name: "delete returning", sql: "DELETE FROM users RETURNING *", want: RouteQuery},
		{name: "returning in literal", sql: "UPDATE c SET note = 'returning customer'", want: RouteExec},
		{name: "returning in escaped literal", sql: "UPDATE c SET note = 'it''s returning'", want: RouteExec},
		{name: "returning in comment", sql: "DELETE FROM c -- returning\nWHERE id = 1", want: RouteExec},
		{name: "returning in block comment", sql: "DELETE FROM c /* returning */ WHERE id = 1", want: RouteExec},
		{name: "returning in quoted identifier", sql: `UPDATE c SET "returning" = 1`, want: RouteExec},
		{name: "returning after literal", sql: "UPDATE c SET note = 'x' RETURNING id", want: RouteQuery},
		{name: "selection identifier", sql: "SELECTION_RULES", want: RouteExec},
		{name: "garbage", sql: "SELEC 1", want: RouteExec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Route(tt.sql); got != tt.want {
				t.Errorf("Route(%q) = %s, want %s", tt.sql, got, tt.want)
			}
		})
	}
}

func TestStripLiterals(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{sql: "SELECT 'a' FROM t", want: "SELECT   FROM t"},
		{sql: `SELECT "a\"b"`, want: "SELECT  "},
		{sql: "SELECT 1 # note\n", want: "SELECT 1  "},
		{sql: "SELECT /* x */ 1", want: "SELECT   1"},
		{sql: "SELECT 'open", want: "SELECT  "},
	}

	for _, tt := range tests {
		if got := stripLiterals(tt.sql); got != tt.want {
			t.Errorf("stripLiterals(%q) = %q, want %q", tt.sql, got, tt.want)
		}
	}
}

func TestRouteSQL(t *testing.T) {
	if got := RouteSQL("SELECT 1"); got != RouteQuery {
		t.Errorf("RouteSQL() = %s, want query", got)
	}
	if got := RouteSQL("TRUNCATE t"); got != RouteExec {
		t.Errorf("RouteSQL() = %s, want exec", got)
	}
}
