package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// Publisher sends review events to JetStream and revalidation signals over core NATS
type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewPublisher creates a new NATS JetStream publisher
func NewPublisher(url string, log *logger.Logger) (*Publisher, error) {
	nc, err := Connect(url, "storefront-api", log)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: log,
	}, nil
}

// JetStream exposes the JetStream context for stream provisioning
func (p *Publisher) JetStream() nats.JetStreamContext {
	return p.js
}

// Publish stores a message on a JetStream subject and waits for the ack
func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	pubAck, err := p.js.Publish(subject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish to JetStream: %w", err)
	}

	p.logger.WithFields(map[string]interface{}{
		"subject":  subject,
		"stream":   pubAck.Stream,
		"sequence": pubAck.Sequence,
	}).Debug("Published message to JetStream")

	return nil
}

// Notify sends a fire-and-forget message on a core NATS subject
func (p *Publisher) Notify(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.logger.With("subject", subject).Debug("Published notification")
	return nil
}

// Close flushes pending notifications and closes the NATS connection
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warnf("Failed to drain NATS connection: %v", err)
		p.nc.Close()
	}
	p.logger.Info("NATS publisher connection closed")
}
