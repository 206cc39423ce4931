package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/salary-advance/internal/core/events"
)

type recordingPublisher struct {
	mu       sync.Mutex
	keys     []string
	ids      []string
	failWith error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey, messageID string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.keys = append(p.keys, routingKey)
	p.ids = append(p.ids, messageID)
	return nil
}

var _ = Describe("EventBus", func() {
	var (
		bus    *events.EventBus
		logger *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
	})

	It("runs synchronous handlers in order and stops on the first error", func() {
		var calls []string
		bus.Subscribe(events.EventTypePaymentSucceeded, func(ctx context.Context, e events.Event) error {
			calls = append(calls, "first")
			return errors.New("boom")
		})
		bus.Subscribe(events.EventTypePaymentSucceeded, func(ctx context.Context, e events.Event) error {
			calls = append(calls, "second")
			return nil
		})

		err := bus.PublishSync(context.Background(), events.NewPaymentSucceededEvent("tx", "pay", "adv", "emp", "partner", 935000, "orange_money"))
		Expect(err).To(MatchError(ContainSubstring("boom")))
		Expect(calls).To(Equal([]string{"first"}))
	})

	It("delivers asynchronous events after the publishing context is cancelled", func() {
		done := make(chan string, 1)
		bus.Subscribe(events.EventTypeAdvanceApproved, func(ctx context.Context, e events.Event) error {
			done <- e.(*events.AdvanceEvent).AdvanceID
			return ctx.Err()
		})

		ctx, cancel := context.WithCancel(context.Background())
		Expect(bus.Publish(ctx, events.NewAdvanceEvent(events.EventTypeAdvanceApproved, "adv-1", "emp-1", "p-1", 1000, ""))).To(Succeed())
		cancel()

		Eventually(done).Should(Receive(Equal("adv-1")))
	})

	It("ignores events without handlers", func() {
		Expect(bus.PublishSync(context.Background(), events.NewAdvanceEvent(events.EventTypeAdvanceRejected, "a", "e", "p", 1, "motif"))).To(Succeed())
	})

	Describe("Forwarder", func() {
		It("forwards every event type with its id as message id", func() {
			publisher := &recordingPublisher{}
			events.NewForwarder(publisher, logger).Register(bus)

			evt := events.NewPaymentFailedEvent("tx", "pay", "adv", "emp", "partner", 935000, "orange_money", "FAILED")
			Expect(bus.PublishSync(context.Background(), evt)).To(Succeed())

			Expect(publisher.keys).To(Equal([]string{events.EventTypePaymentFailed}))
			Expect(publisher.ids).To(Equal([]string{evt.EventID()}))
		})

		It("does not fail the publishing flow when the broker is down", func() {
			publisher := &recordingPublisher{failWith: errors.New("connection refused")}
			events.NewForwarder(publisher, logger).Register(bus)

			Expect(bus.PublishSync(context.Background(), events.NewAdvanceEvent(events.EventTypeAdvanceApproved, "a", "e", "p", 1, ""))).To(Succeed())
		})
	})
})
