package repl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/pterm/pterm"
)

const (
	// Prompt precedes the input line.
	Prompt = "mysql> "

	continuationPrompt = "    -> "
	clearLine          = "\r\033[K"
	clearScreen        = "\033[H\033[2J"
)

// Terminal drives a Session from raw keyboard input and renders it to out.
type Terminal struct {
	session      *Session
	out          io.Writer
	pollInterval time.Duration

	mu         sync.Mutex
	printed    int
	generation int
}

// NewTerminal creates a terminal front end. The health indicator is refreshed
// every pollInterval and once at start.
func NewTerminal(session *Session, out io.Writer, pollInterval time.Duration) *Terminal {
	return &Terminal{
		session:      session,
		out:          out,
		pollInterval: pollInterval,
	}
}

// Run reads keys until the session exits or ctx is canceled.
func (t *Terminal) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(t.out, pterm.Bold.Sprint("Welcome to the SQL playground."))
	fmt.Fprintln(t.out, pterm.Gray("End statements with ';'. Ctrl+J runs the buffer as is. Type 'exit' to leave."))

	t.session.OnChange(t.Redraw)
	t.Redraw()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.pollHealth(ctx)
	}()

	err := keyboard.Listen(func(key keys.Key) (bool, error) {
		if ctx.Err() != nil {
			return true, nil
		}
		t.session.HandleKey(ctx, key)
		return t.session.Exited(), nil
	})

	cancel()
	wg.Wait()
	t.session.Wait()
	fmt.Fprintln(t.out)
	return err
}

func (t *Terminal) pollHealth(ctx context.Context) {
	_ = t.session.CheckHealth(ctx)

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = t.session.CheckHealth(ctx)
		}
	}
}

// Redraw prints entries added since the last call and repaints the input line.
func (t *Terminal) Redraw() {
	v := t.session.View()

	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	b.WriteString(clearLine)
	if v.Generation != t.generation {
		b.WriteString(clearScreen)
		t.generation = v.Generation
		t.printed = 0
	}
	for _, e := range v.Entries[min(t.printed, len(v.Entries)):] {
		b.WriteString(RenderEntry(e))
		b.WriteByte('\n')
	}
	t.printed = len(v.Entries)

	if !v.Exited {
		b.WriteString(promptLine(v))
	}
	// Raw mode needs explicit carriage returns.
	fmt.Fprint(t.out, strings.ReplaceAll(b.String(), "\n", "\r\n"))
}

func promptLine(v View) string {
	var indicator string
	switch v.Status {
	case StatusConnected:
		indicator = pterm.Green("●") + pterm.Gray(fmt.Sprintf(" %dms", v.Latency.Milliseconds()))
	case StatusDown:
		indicator = pterm.Red("●")
	default:
		indicator = pterm.Gray("●")
	}
	prompt := Prompt
	if v.State == StateAwaiting {
		prompt = pterm.Gray(Prompt)
	}
	return indicator + " " + prompt + strings.ReplaceAll(v.Buffer, "\n", " ")
}

// RenderEntry formats a history entry for display.
func RenderEntry(e Entry) string {
	switch e.Kind {
	case EntryQuery:
		return Prompt + strings.ReplaceAll(Highlight(e.Text), "\n", "\n"+continuationPrompt)
	case EntryResult, EntryMutation:
		return FormatResult(e.Result, e.Elapsed)
	case EntryError:
		return pterm.Red(e.Text)
	default:
		return pterm.Cyan(e.Text)
	}
}
