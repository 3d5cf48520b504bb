package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keywords is the completion list, in match priority order.
var Keywords = []string{
	"SELECT", "FROM", "WHERE", "INSERT", "INTO", "VALUES", "UPDATE", "SET", "DELETE",
	"CREATE", "TABLE", "DROP", "ALTER", "INDEX", "JOIN", "LEFT", "RIGHT", "INNER", "OUTER",
	"ON", "GROUP", "BY", "ORDER", "HAVING", "LIMIT", "OFFSET", "DISTINCT", "AS", "AND", "OR",
	"NOT", "NULL", "IS", "IN", "LIKE", "BETWEEN", "EXISTS", "UNION", "COUNT", "SUM", "AVG",
	"MIN", "MAX", "SHOW", "TABLES", "DATABASES", "DESCRIBE", "USE", "PRIMARY", "KEY",
	"DEFAULT", "RETURNING", "WITH", "CASE", "WHEN", "THEN", "ELSE", "END",
}

// Complete replaces the last whitespace-delimited token of buf with the first
// keyword it prefixes, ignoring case, and appends a space.
// It reports false and returns buf unchanged when nothing matches.
func Complete(buf string) (string, bool) {
	start := 0
	if i := strings.LastIndexFunc(buf, unicode.IsSpace); i >= 0 {
		_, size := utf8.DecodeRuneInString(buf[i:])
		start = i + size
	}
	token := buf[start:]
	if token == "" {
		return buf, false
	}

	upper := strings.ToUpper(token)
	for _, kw := range Keywords {
		if strings.HasPrefix(kw, upper) {
			return buf[:start] + kw + " ", true
		}
	}
	return buf, false
}
