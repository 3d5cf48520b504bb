package repl

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/nnnkkk7/sql-playground/pkg/query"
	"github.com/nnnkkk7/sql-playground/server/types"
)

// NullText is how SQL NULL cells are displayed.
const NullText = "NULL"

// RenderTable renders rows as a fixed-width text table in classic database CLI style.
// Column widths are the larger of the header and the widest cell.
func RenderTable(fields []string, rows []map[string]any) string {
	if len(fields) == 0 && len(rows) > 0 {
		fields = sortedKeys(rows[0])
	}
	if len(fields) == 0 {
		return ""
	}

	cells := make([][]string, len(rows))
	widths := make([]int, len(fields))
	for i, f := range fields {
		widths[i] = runewidth.StringWidth(f)
	}
	for r, row := range rows {
		cells[r] = make([]string, len(fields))
		for i, f := range fields {
			s := FormatCell(row[f])
			cells[r][i] = s
			if w := runewidth.StringWidth(s); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	border := borderLine(widths)
	b.WriteString(border)
	writeRow(&b, fields, widths)
	b.WriteString(border)
	for _, row := range cells {
		writeRow(&b, row, widths)
	}
	b.WriteString(border)
	return b.String()
}

func borderLine(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteByte('|')
	for i, c := range cells {
		b.WriteByte(' ')
		b.WriteString(runewidth.FillRight(c, widths[i]))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}

// FormatCell stringifies a decoded JSON cell.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return NullText
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatResult renders a successful query result followed by its summary line.
func FormatResult(res *types.QueryResult, elapsed time.Duration) string {
	secs := fmt.Sprintf("(%.2f sec)", elapsed.Seconds())

	if res.Type == query.KindModify {
		return fmt.Sprintf("Query OK, %s affected %s", plural(res.AffectedRows, "row"), secs)
	}
	if len(res.Rows) == 0 {
		return "Empty set " + secs
	}
	return RenderTable(res.Fields, res.Rows) + fmt.Sprintf("%s in set %s", plural(int64(len(res.Rows)), "row"), secs)
}

// FormatError renders an error envelope as a single line.
func FormatError(res *types.QueryResult) string {
	msg := res.Error
	if msg == "" {
		msg = "Unknown error"
	}
	if res.Code != "" {
		msg = fmt.Sprintf("%s (%s)", msg, res.Code)
	}
	if res.Details != "" {
		msg += ": " + res.Details
	}
	return "ERROR: " + msg
}

func plural(n int64, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
