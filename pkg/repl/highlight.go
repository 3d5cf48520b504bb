package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pterm/pterm"
)

type tokenKind int

const (
	tokenPlain tokenKind = iota
	tokenKeyword
	tokenString
	tokenNumber
	tokenComment
)

type token struct {
	kind tokenKind
	text string
}

var keywordSet = func() map[string]bool {
	set := make(map[string]bool, len(Keywords))
	for _, kw := range Keywords {
		set[kw] = true
	}
	return set
}()

// Highlight colors keywords, literals and comments of sql for terminal display.
func Highlight(sql string) string {
	var b strings.Builder
	for _, tok := range tokenize(sql) {
		switch tok.kind {
		case tokenKeyword:
			b.WriteString(pterm.LightBlue(tok.text))
		case tokenString:
			b.WriteString(pterm.Green(tok.text))
		case tokenNumber:
			b.WriteString(pterm.Yellow(tok.text))
		case tokenComment:
			b.WriteString(pterm.Gray(tok.text))
		default:
			b.WriteString(tok.text)
		}
	}
	return b.String()
}

// tokenize splits sql into tokens whose texts concatenate back to sql.
func tokenize(sql string) []token {
	var tokens []token
	for len(sql) > 0 {
		kind, n := scanToken(sql)
		tokens = append(tokens, token{kind: kind, text: sql[:n]})
		sql = sql[n:]
	}
	return tokens
}

func scanToken(s string) (tokenKind, int) {
	r, size := utf8.DecodeRuneInString(s)
	switch {
	case r == '\'' || r == '"' || r == '`':
		if end := closingQuote(s, byte(r)); end > 0 {
			return tokenString, end
		}
		return tokenString, len(s)
	case strings.HasPrefix(s, "--"):
		return tokenComment, lineEnd(s)
	case strings.HasPrefix(s, "/*"):
		if end := strings.Index(s[2:], "*/"); end >= 0 {
			return tokenComment, end + 4
		}
		return tokenComment, len(s)
	case unicode.IsDigit(r):
		n := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) && r != '.' })
		if n < 0 {
			n = len(s)
		}
		return tokenNumber, n
	case isWordRune(r):
		n := strings.IndexFunc(s, func(r rune) bool { return !isWordRune(r) && !unicode.IsDigit(r) })
		if n < 0 {
			n = len(s)
		}
		if keywordSet[strings.ToUpper(s[:n])] {
			return tokenKeyword, n
		}
		return tokenPlain, n
	default:
		return tokenPlain, size
	}
}

// closingQuote returns the length of the quoted literal at the start of s,
// or 0 when it is not terminated.
func closingQuote(s string, quote byte) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			if i+1 < len(s) && s[i+1] == quote {
				i++
				continue
			}
			return i + 1
		}
	}
	return 0
}

func lineEnd(s string) int {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return i
	}
	return len(s)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
