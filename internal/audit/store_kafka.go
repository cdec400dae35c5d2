package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaStore publishes audit events to a Kafka topic. Events are keyed by
// actor so one account's trail stays ordered within a partition.
//
// ListByActor is not supported here; the topic is a firehose for downstream
// consumers, not a query surface.
type KafkaStore struct {
	client *kgo.Client
	topic  string
}

// NewKafkaStore connects to the given seed brokers.
func NewKafkaStore(seeds []string, topic string) (*KafkaStore, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("kafka seed brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaStore{client: client, topic: topic}, nil
}

type wireEvent struct {
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor"`
	Subject   string `json:"subject,omitempty"`
	Action    string `json:"action"`
	Pool      uint64 `json:"pool,omitempty"`
	Claim     uint64 `json:"claim,omitempty"`
	Amount    uint64 `json:"amount,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(wireEvent{
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Actor:     event.Actor,
		Subject:   event.Subject,
		Action:    event.Action,
		Pool:      event.Pool,
		Claim:     event.Claim,
		Amount:    event.Amount,
		Outcome:   event.Outcome,
		Reason:    event.Reason,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{Key: []byte(event.Actor), Value: payload}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *KafkaStore) ListByActor(context.Context, string) ([]Event, error) {
	return nil, fmt.Errorf("kafka audit store does not support reads")
}

func (s *KafkaStore) Close() {
	s.client.Close()
}
