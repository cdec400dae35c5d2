package audit

import (
	"context"
	"fmt"
)

// ChannelStore hands events to a background Worker instead of persisting them
// inline, keeping slow sinks off the request path. Append never blocks: when
// the inbox is full the event is dropped with an error so the caller can log
// the loss.
type ChannelStore struct {
	inbox chan<- Event
}

func NewChannelStore(inbox chan<- Event) *ChannelStore {
	return &ChannelStore{inbox: inbox}
}

func (s *ChannelStore) Append(ctx context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("audit inbox full, event dropped")
	}
}

// ListByActor is not supported; reads go to the terminal sink.
func (s *ChannelStore) ListByActor(context.Context, string) ([]Event, error) {
	return nil, fmt.Errorf("channel store does not support reads")
}
