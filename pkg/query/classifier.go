package query

import (
	"regexp"
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// Route says how a statement must be executed through database/sql.
type Route int

// Routes.
const (
	RouteExec  Route = iota // ExecContext: INSERT, UPDATE, DELETE, DDL, SET, ...
	RouteQuery              // QueryContext: SELECT, SHOW, DESCRIBE, EXPLAIN, ...
)

func (r Route) String() string {
	if r == RouteQuery {
		return "query"
	}
	return "exec"
}

// rowPrefixes are leading keywords of statements that return rows. Used when the
// parser does not understand the statement.
var rowPrefixes = []string{
	"SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "VALUES", "TABLE", "PRAGMA", "SUMMARIZE", "FROM",
	"CALL", "CHECK", "CHECKSUM", "ANALYZE", "OPTIMIZE", "REPAIR", "HELP",
}

var (
	returningClause = regexp.MustCompile(`(?i)\bRETURNING\b`)
	leadingComment  = regexp.MustCompile(`^(\s+|--[^\n]*(\n|$)|#[^\n]*(\n|$)|/\*(?s:.*?)\*/)`)
)

// Classifier decides whether a statement is executed as a query or an exec.
// It never rejects a statement: unparseable SQL is routed by its leading keyword
// and the database reports the real error.
type Classifier struct{}

// NewClassifier creates a new SQL classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Route returns the execution route for sql.
func (c *Classifier) Route(sql string) (route Route) {
	// The parser dereferences nil on some statements it accepts, SHOW TABLES among them.
	defer func() {
		if recover() != nil {
			route = c.routeByPrefix(sql)
		}
	}()

	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return c.routeByPrefix(sql)
	}

	switch stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union, *sqlparser.ParenSelect, *sqlparser.Show, *sqlparser.OtherRead:
		return RouteQuery
	}
	if c.hasRowPrefix(sql) {
		return RouteQuery
	}
	return RouteExec
}

// routeByPrefix routes statements the parser rejected. Writes with a RETURNING
// clause produce rows.
func (c *Classifier) routeByPrefix(sql string) Route {
	if c.hasRowPrefix(sql) || returningClause.MatchString(stripLiterals(sql)) {
		return RouteQuery
	}
	return RouteExec
}

func (c *Classifier) hasRowPrefix(sql string) bool {
	upperSQL := strings.ToUpper(stripLeading(sql))
	for _, prefix := range rowPrefixes {
		if !strings.HasPrefix(upperSQL, prefix) {
			continue
		}
		rest := upperSQL[len(prefix):]
		if rest == "" || !isIdentChar(rest[0]) {
			return true
		}
	}
	return false
}

// stripLeading removes whitespace, comments and opening parentheses before the first keyword.
func stripLeading(sql string) string {
	for {
		trimmed := strings.TrimLeft(sql, "( \t\r\n")
		loc := leadingComment.FindStringIndex(trimmed)
		if loc == nil || loc[1] == 0 {
			return trimmed
		}
		sql = trimmed[loc[1]:]
	}
}

// stripLiterals blanks out quoted strings, quoted identifiers and comments.
func stripLiterals(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			i = skipQuoted(sql, i, ch)
			b.WriteByte(' ')
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-', ch == '#':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case ch == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = len(sql)
			} else {
				i += end + 3
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// skipQuoted returns the index of the quote closing the literal opened at start.
// Doubled quotes and backslash escapes stay inside the literal.
func skipQuoted(sql string, start int, quote byte) int {
	for i := start + 1; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			i++
		case quote:
			if i+1 < len(sql) && sql[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return len(sql)
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// DefaultClassifier is the default SQL classifier instance.
var DefaultClassifier = NewClassifier()

// RouteSQL is a convenience function using the default classifier.
func RouteSQL(sql string) Route {
	return DefaultClassifier.Route(sql)
}
