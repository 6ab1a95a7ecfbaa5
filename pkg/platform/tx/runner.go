package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"
)

// Runner executes fn as one unit of work.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type memoryTxKey struct{}

// MemoryRunner serialises units of work across the in-memory stores with one
// coarse lock. It isolates but does not roll back, so callers validate before
// their first write. Nested calls on the same context do not re-lock.
type MemoryRunner struct {
	mu sync.Mutex
}

func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(context.WithValue(ctx, memoryTxKey{}, true))
}

// SQLRunner runs units of work in a database transaction carried on the context.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLRunner(db *sql.DB, timeout time.Duration) *SQLRunner {
	return &SQLRunner{db: db, timeout: timeout}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, r.db, r.timeout, fn)
}
