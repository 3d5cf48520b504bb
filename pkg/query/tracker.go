package query

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Statement is a statement currently executing on a pooled connection.
type Statement struct {
	ID        string
	SQL       string
	Route     Route
	StartedAt time.Time
}

// Tracker records in-flight statements with thread safety. It only observes;
// it never queues, deduplicates or cancels.
type Tracker struct {
	mu         sync.RWMutex
	statements map[string]*Statement
	now        func() time.Time
}

// NewTracker creates a new in-flight statement tracker.
func NewTracker() *Tracker {
	return &Tracker{
		statements: make(map[string]*Statement),
		now:        time.Now,
	}
}

// Begin registers a statement and returns it with a fresh ID.
func (t *Tracker) Begin(sql string, route Route) *Statement {
	t.mu.Lock()
	defer t.mu.Unlock()

	stmt := &Statement{
		ID:        uuid.NewString(),
		SQL:       sql,
		Route:     route,
		StartedAt: t.now(),
	}
	t.statements[stmt.ID] = stmt
	return stmt
}

// Finish removes a statement. Unknown IDs are ignored.
func (t *Tracker) Finish(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.statements, id)
}

// InFlight returns the number of executing statements.
func (t *Tracker) InFlight() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.statements)
}

// Snapshot returns copies of the executing statements, oldest first.
func (t *Tracker) Snapshot() []Statement {
	t.mu.RLock()
	out := make([]Statement, 0, len(t.statements))
	for _, stmt := range t.statements {
		out = append(out, *stmt)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}
