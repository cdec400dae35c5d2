package memory

import (
	"context"
	"sync"
	"time"

	"carepool/internal/ledger/ports"
	dErrors "carepool/pkg/domain-errors"
)

// defaultTxTimeout is the maximum duration for one ledger transaction.
const defaultTxTimeout = 5 * time.Second

// Tx serializes ledger mutations behind a single mutex, giving the in-memory
// store the same one-operation-at-a-time semantics a serializable database
// transaction gives the SQL store.
//
// A single global lock rather than shards: claim review touches a member, a
// pool, a claim, and global counters in one step, and identifier issuance
// must be totally ordered across all records. Contention is acceptable at the
// scale one process serves.
type Tx struct {
	mu      sync.Mutex
	store   *Store
	timeout time.Duration
}

func NewTx(store *Store) *Tx {
	return &Tx{store: store, timeout: defaultTxTimeout}
}

func (t *Tx) RunInTx(ctx context.Context, fn func(s ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(t.store)
}
