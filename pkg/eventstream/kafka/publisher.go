// Package kafka publishes turn events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/jarvis/pkg/eventstream"
)

// DefaultTopic receives turn events when no topic is configured.
const DefaultTopic = "jarvis.turns"

// Config configures the publisher.
type Config struct {
	Brokers []string
	Topic   string

	// WriteTimeout bounds a single publish. Defaults to 10s.
	WriteTimeout time.Duration
}

// Publisher writes JSON-encoded TurnEvents keyed by event ID.
type Publisher struct {
	writer *kafkago.Writer
	closed atomic.Bool
}

// NewPublisher creates a publisher. Connections are opened lazily on the
// first write.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	timeout := c.WriteTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(c.Brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireOne,
			WriteTimeout: timeout,
		},
	}, nil
}

// Topic returns the destination topic.
func (p *Publisher) Topic() string {
	return p.writer.Topic
}

// PublishTurn encodes and writes event.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}
	if p.closed.Load() {
		return eventstream.ErrPublisherClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: encoding event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.EventID),
		Value: payload,
		Time:  event.EmittedAt,
	})
	if err != nil {
		return fmt.Errorf("kafka: publishing event %s: %w", event.EventID, err)
	}
	return nil
}

// Close flushes pending writes and closes connections. Later calls are no-ops.
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
