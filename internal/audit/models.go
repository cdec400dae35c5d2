package audit

import (
	"context"
	"time"
)

// Event is emitted from ledger operations to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Actor     string
	Subject   string
	Action    string
	Pool      uint64
	Claim     uint64
	Amount    uint64
	Outcome   string
	Reason    string
}

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor string) ([]Event, error)
}
