package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

const (
	fetchBatch   = 10
	fetchWait    = 5 * time.Second
	fetchBackoff = 5 * time.Second
)

// PullConsumer fetches review events from the durable rating consumer
type PullConsumer struct {
	sub    *nats.Subscription
	logger *logger.Logger
}

// NewPullConsumer binds to the durable rating consumer
func NewPullConsumer(js nats.JetStreamContext, log *logger.Logger) (*PullConsumer, error) {
	sub, err := js.PullSubscribe(domain.SubjectReviewEvents, RatingConsumer,
		nats.Bind(StreamName, RatingConsumer),
		nats.ManualAck(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to JetStream consumer: %w", err)
	}

	log.WithFields(map[string]any{
		"stream":   StreamName,
		"consumer": RatingConsumer,
	}).Info("Subscribed to JetStream consumer")

	return &PullConsumer{
		sub:    sub,
		logger: log,
	}, nil
}

// Run fetches messages in batches until ctx is cancelled. Handled messages are
// acked; failed ones are nacked and redelivered with backoff up to MaxDeliveryAttempts.
func (c *PullConsumer) Run(ctx context.Context, handle Handler) {
	for ctx.Err() == nil {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchWait)
		msgs, err := c.sub.Fetch(fetchBatch, nats.Context(fetchCtx))
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			c.logger.Error("Failed to fetch messages from JetStream", err)

			select {
			case <-time.After(fetchBackoff):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, msg := range msgs {
			if err := handle(msg.Data); err != nil {
				c.logger.Error("Failed to handle event", err)
				if nakErr := msg.Nak(); nakErr != nil {
					c.logger.Error("Failed to NAK message", nakErr)
				}
				continue
			}
			if ackErr := msg.Ack(); ackErr != nil {
				c.logger.Error("Failed to ACK message", ackErr)
			}
		}
	}
}

// Close unsubscribes from the consumer, leaving the durable in place
func (c *PullConsumer) Close() {
	if err := c.sub.Unsubscribe(); err != nil {
		c.logger.Error("Failed to unsubscribe from JetStream", err)
	}
}
