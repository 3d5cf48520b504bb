package repl

import (
	"time"

	"github.com/nnnkkk7/sql-playground/server/types"
)

// EntryKind identifies what a history entry displays.
type EntryKind string

const (
	EntryQuery    EntryKind = "query"
	EntryResult   EntryKind = "result"
	EntryMutation EntryKind = "mutation"
	EntryError    EntryKind = "error"
	EntrySystem   EntryKind = "system"
)

// Entry is one line (or block) of session output.
// Result and Elapsed are set only for EntryResult and EntryMutation.
type Entry struct {
	Kind    EntryKind
	Text    string
	Result  *types.QueryResult
	Elapsed time.Duration
}

// CommandLog is the append-only log of submitted commands navigated with Up/Down.
// The cursor rests one past the last command until the user starts navigating.
// The log has no cap; entries stay for the lifetime of the session.
type CommandLog struct {
	commands []string
	cursor   int
}

// Append records a command and resets the cursor past the end.
func (l *CommandLog) Append(cmd string) {
	l.commands = append(l.commands, cmd)
	l.cursor = len(l.commands)
}

// Prev moves the cursor back one command. It reports false when the log is empty.
func (l *CommandLog) Prev() (string, bool) {
	if len(l.commands) == 0 {
		return "", false
	}
	if l.cursor > 0 {
		l.cursor--
	}
	return l.commands[l.cursor], true
}

// Next moves the cursor forward one command. Moving past the last command
// returns an empty string so the caller clears its buffer.
func (l *CommandLog) Next() (string, bool) {
	if l.cursor >= len(l.commands) {
		return "", false
	}
	l.cursor++
	if l.cursor == len(l.commands) {
		return "", true
	}
	return l.commands[l.cursor], true
}

// Len returns the number of recorded commands.
func (l *CommandLog) Len() int {
	return len(l.commands)
}
