package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrScriptFailed is returned by RunScript when at least one statement failed.
var ErrScriptFailed = errors.New("one or more statements failed")

// RunScript feeds r to a session line by line, as if each line ended with Enter,
// and writes the rendered entries to w. Statements run one at a time. A trailing
// statement without ';' is submitted at EOF. Processing stops at an exit command.
func RunScript(ctx context.Context, backend Backend, r io.Reader, w io.Writer) error {
	s := NewSession(backend)
	printed := 0
	failed := false

	flush := func() {
		s.Wait()
		v := s.View()
		if printed > len(v.Entries) {
			printed = 0
		}
		for _, e := range v.Entries[printed:] {
			if e.Kind == EntryError {
				failed = true
			}
			if e.Kind == EntryQuery {
				continue
			}
			fmt.Fprintln(w, RenderEntry(e))
		}
		printed = len(v.Entries)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() && !s.Exited() {
		s.Type(scanner.Text())
		if s.Submit(ctx, false) {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if !s.Exited() && s.Submit(ctx, true) {
		flush()
	}

	if failed {
		return ErrScriptFailed
	}
	return nil
}
