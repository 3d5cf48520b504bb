package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/keyboard/keys"

	"github.com/nnnkkk7/sql-playground/pkg/query"
)

// State is the submission state of a session.
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting-response"
	}
	return "idle"
}

// ConnStatus is the last known database status.
type ConnStatus string

const (
	StatusUnknown   ConnStatus = "checking"
	StatusConnected ConnStatus = "connected"
	StatusDown      ConnStatus = "down"
)

const cancelCommand = `\c`

// View is a copy of the session state for rendering.
type View struct {
	State      State
	Buffer     string
	Entries    []Entry
	Status     ConnStatus
	Latency    time.Duration
	Generation int
	Exited     bool
}

// Session is the REPL state machine. It allows one in-flight request at a time;
// history navigation and editing stay available while a request runs.
type Session struct {
	backend Backend
	now     func() time.Time

	mu         sync.Mutex
	state      State
	buffer     string
	entries    []Entry
	log        CommandLog
	status     ConnStatus
	latency    time.Duration
	generation int
	exited     bool
	onChange   func()

	wg sync.WaitGroup
}

// NewSession creates an idle session backed by backend.
func NewSession(backend Backend) *Session {
	return &Session{
		backend: backend,
		now:     time.Now,
		status:  StatusUnknown,
	}
}

// OnChange registers fn to be called after every state change. fn runs without
// the session lock held and may call View.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		State:      s.state,
		Buffer:     s.buffer,
		Entries:    append([]Entry(nil), s.entries...),
		Status:     s.status,
		Latency:    s.latency,
		Generation: s.generation,
		Exited:     s.exited,
	}
}

// Exited reports whether an exit command was submitted.
func (s *Session) Exited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

// Wait blocks until in-flight requests finish.
func (s *Session) Wait() {
	s.wg.Wait()
}

// HandleKey applies a key press.
func (s *Session) HandleKey(ctx context.Context, key keys.Key) {
	switch key.Code {
	case keys.Enter:
		s.Submit(ctx, false)
		return
	case keys.CtrlJ:
		s.Submit(ctx, true)
		return
	case keys.CtrlC:
		s.mu.Lock()
		s.exit()
		s.mu.Unlock()
	case keys.Up:
		s.mu.Lock()
		if cmd, ok := s.log.Prev(); ok {
			s.buffer = cmd
		}
		s.mu.Unlock()
	case keys.Down:
		s.mu.Lock()
		if cmd, ok := s.log.Next(); ok {
			s.buffer = cmd
		}
		s.mu.Unlock()
	case keys.Tab:
		s.mu.Lock()
		s.buffer, _ = Complete(s.buffer)
		s.mu.Unlock()
	case keys.Backspace:
		s.mu.Lock()
		if r := []rune(s.buffer); len(r) > 0 {
			s.buffer = string(r[:len(r)-1])
		}
		s.mu.Unlock()
	case keys.Space:
		s.Type(" ")
		return
	case keys.RuneKey:
		s.Type(string(key.Runes))
		return
	default:
		return
	}
	s.changed()
}

// Type appends text to the input buffer.
func (s *Session) Type(text string) {
	s.mu.Lock()
	s.buffer += text
	s.mu.Unlock()
	s.changed()
}

// Submit handles the input buffer. Without force, a buffer not ending in ';'
// only gains a line break. It reports whether a command was dispatched.
func (s *Session) Submit(ctx context.Context, force bool) bool {
	s.mu.Lock()
	dispatched := s.submitLocked(ctx, force)
	s.mu.Unlock()
	s.changed()
	return dispatched
}

func (s *Session) submitLocked(ctx context.Context, force bool) bool {
	text := strings.TrimSpace(s.buffer)
	if isCancel(text) {
		s.buffer = ""
		return false
	}
	if !force && !strings.HasSuffix(text, ";") {
		if text != "" {
			s.buffer += "\n"
		}
		return false
	}
	if text == "" || s.state == StateAwaiting {
		return false
	}

	s.buffer = ""
	s.log.Append(text)
	s.entries = append(s.entries, Entry{Kind: EntryQuery, Text: text})

	switch localCommand(text) {
	case "exit", "quit":
		s.exit()
		return true
	case "clear":
		s.entries = nil
		s.generation++
		return true
	case "status":
		s.state = StateAwaiting
		s.wg.Add(1)
		go s.runStatus(ctx)
		return true
	}

	s.state = StateAwaiting
	s.wg.Add(1)
	go s.runQuery(ctx, text)
	return true
}

func (s *Session) exit() {
	if s.exited {
		return
	}
	s.exited = true
	s.entries = append(s.entries, Entry{Kind: EntrySystem, Text: "Goodbye!"})
}

func (s *Session) runQuery(ctx context.Context, sql string) {
	defer s.wg.Done()

	start := s.now()
	res, err := s.backend.Query(ctx, sql)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	switch {
	case err != nil:
		s.status = StatusDown
		s.entries = append(s.entries, Entry{Kind: EntryError, Text: "ERROR: " + err.Error()})
	case !res.Success:
		s.entries = append(s.entries, Entry{Kind: EntryError, Text: FormatError(res)})
	default:
		kind := EntryResult
		if res.Type == query.KindModify {
			kind = EntryMutation
		}
		s.entries = append(s.entries, Entry{Kind: kind, Result: res, Elapsed: elapsed})
	}
	s.state = StateIdle
	s.mu.Unlock()
	s.changed()
}

func (s *Session) runStatus(ctx context.Context) {
	defer s.wg.Done()

	err := s.CheckHealth(ctx)

	s.mu.Lock()
	text := fmt.Sprintf("Database: %s (%d ms)", s.status, s.latency.Milliseconds())
	if err != nil {
		text = fmt.Sprintf("Database: %s (%v)", s.status, err)
	}
	s.entries = append(s.entries, Entry{Kind: EntrySystem, Text: text})
	s.state = StateIdle
	s.mu.Unlock()
	s.changed()
}

// CheckHealth probes the server and updates the status indicator. Any failure,
// including an unreachable server, marks the database down.
func (s *Session) CheckHealth(ctx context.Context) error {
	start := s.now()
	res, err := s.backend.Health(ctx)
	latency := s.now().Sub(start)

	s.mu.Lock()
	s.latency = latency
	switch {
	case err != nil:
		s.status = StatusDown
	case !res.Healthy():
		s.status = StatusDown
		if res.Error != "" {
			err = errors.New(res.Error)
		}
	default:
		s.status = StatusConnected
	}
	s.mu.Unlock()
	s.changed()
	return err
}

func (s *Session) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// localCommand normalizes text for matching local commands.
func localCommand(text string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(text, ";")))
}

func isCancel(text string) bool {
	return strings.HasSuffix(strings.TrimSuffix(text, ";"), cancelCommand)
}
