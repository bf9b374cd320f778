package kafka_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/eventstream"
	"github.com/papercomputeco/jarvis/pkg/eventstream/kafka"
)

var _ = Describe("Publisher", func() {
	It("requires brokers", func() {
		_, err := kafka.NewPublisher(kafka.Config{})
		Expect(err).To(MatchError(ContainSubstring("broker")))
	})

	It("defaults the topic", func() {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"127.0.0.1:1"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Topic()).To(Equal(kafka.DefaultTopic))
		Expect(p.Close()).To(Succeed())
	})

	It("returns ErrNilTurnEvent for nil events", func() {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"127.0.0.1:1"}, Topic: "t"})
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		Expect(p.PublishTurn(context.Background(), nil)).To(MatchError(eventstream.ErrNilTurnEvent))
	})

	It("fails when no broker is reachable", func() {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"127.0.0.1:1"}, Topic: "t"})
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		event := eventstream.NewTurnEvent(eventstream.EventSource{Assistant: "Jarvis"}, eventstream.Turn{Query: "q"}, time.Now())
		Expect(p.PublishTurn(ctx, event)).To(HaveOccurred())
	})

	It("refuses events after Close", func() {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"127.0.0.1:1"}, Topic: "t"})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Close()).To(Succeed())
		Expect(p.Close()).To(Succeed())

		event := eventstream.NewTurnEvent(eventstream.EventSource{Assistant: "Jarvis"}, eventstream.Turn{Query: "q"}, time.Now())
		Expect(p.PublishTurn(context.Background(), event)).To(MatchError(eventstream.ErrPublisherClosed))
	})
})
