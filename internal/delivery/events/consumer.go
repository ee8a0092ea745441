package events

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// Handler processes one message payload
type Handler func(data []byte) error

// Consumer subscribes to core NATS subjects
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
}

// NewConsumer creates a new NATS consumer
func NewConsumer(url, name string, log *logger.Logger) (*Consumer, error) {
	nc, err := Connect(url, name, log)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// Subscribe subscribes to a NATS subject and processes messages
func (c *Consumer) Subscribe(subject string, handler Handler) error {
	_, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		c.logger.Debugf("Received message on subject %s", subject)

		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", subject)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.logger.Infof("Subscribed to NATS subject: %s", subject)
	return nil
}

// Close lets in-flight messages finish, then closes the connection
func (c *Consumer) Close() {
	if c.nc == nil {
		return
	}
	if err := c.nc.Drain(); err != nil {
		c.logger.Warnf("Failed to drain NATS connection: %v", err)
		c.nc.Close()
	}
	c.logger.Info("NATS consumer connection closed")
}
