package query

import (
	"context"
)

// Runner executes a single query request.
// This lets the HTTP layer be tested without a database.
type Runner interface {
	// Execute validates and runs req on an exclusively held connection.
	Execute(ctx context.Context, req Request) (*Outcome, error)
}

var _ Runner = (*Executor)(nil)
