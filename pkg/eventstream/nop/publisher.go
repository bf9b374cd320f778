// Package nop provides the publisher used when turn events are disabled.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/jarvis/pkg/eventstream"
)

// Publisher accepts every turn event and discards it, keeping only a count.
type Publisher struct {
	published atomic.Int64
	closed    atomic.Bool
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishTurn counts event. It still rejects nil events and refuses work
// after Close, like a real backend.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}
	if p.closed.Load() {
		return eventstream.ErrPublisherClosed
	}

	p.published.Add(1)
	return nil
}

// Published returns how many events were accepted.
func (p *Publisher) Published() int {
	return int(p.published.Load())
}

func (p *Publisher) Close() error {
	p.closed.Store(true)
	return nil
}
