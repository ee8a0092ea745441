package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

const (
	// StreamName is the JetStream stream holding review events
	StreamName = "REVIEWS"

	// RatingConsumer is the durable consumer the rating worker pulls from
	RatingConsumer = "rating-worker"

	// MaxDeliveryAttempts bounds redeliveries. Dropping a message is safe because
	// the next rating-affecting event recomputes from the database.
	MaxDeliveryAttempts = 3

	// AckWait is how long to wait for acknowledgment before redelivery
	AckWait = 30 * time.Second

	streamMaxAge = 24 * time.Hour
)

// Streams provisions the JetStream stream and durable consumers
type Streams struct {
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewStreams creates a stream provisioning helper
func NewStreams(js nats.JetStreamContext, log *logger.Logger) *Streams {
	return &Streams{
		js:     js,
		logger: log,
	}
}

// exponentialBackoff returns 1s, 2s, 4s... One entry per redelivery.
func exponentialBackoff(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

// EnsureStream creates the review event stream when it does not exist yet.
// Messages are file backed and removed once acknowledged.
func (s *Streams) EnsureStream() error {
	info, err := s.js.StreamInfo(StreamName)
	if err == nil {
		s.logger.WithFields(map[string]any{
			"stream":   info.Config.Name,
			"messages": info.State.Msgs,
			"bytes":    info.State.Bytes,
		}).Info("JetStream stream already exists")
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	_, err = s.js.AddStream(&nats.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{domain.SubjectReviewEvents},
		Retention:   nats.WorkQueuePolicy,
		Storage:     nats.FileStorage,
		Replicas:    1,
		MaxAge:      streamMaxAge,
		Discard:     nats.DiscardOld,
		Description: "Review mutations for rating recalculation",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"stream":  StreamName,
		"subject": domain.SubjectReviewEvents,
	}).Info("JetStream stream created")
	return nil
}

// EnsureRatingConsumer creates the durable pull consumer of the rating worker
func (s *Streams) EnsureRatingConsumer() error {
	info, err := s.js.ConsumerInfo(StreamName, RatingConsumer)
	if err == nil {
		s.logger.WithFields(map[string]any{
			"consumer":    info.Name,
			"pending":     info.NumPending,
			"redelivered": info.NumRedelivered,
			"ack_pending": info.NumAckPending,
		}).Info("JetStream consumer already exists")
		return nil
	}
	if !errors.Is(err, nats.ErrConsumerNotFound) {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	_, err = s.js.AddConsumer(StreamName, &nats.ConsumerConfig{
		Durable:       RatingConsumer,
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       AckWait,
		MaxDeliver:    MaxDeliveryAttempts,
		FilterSubject: domain.SubjectReviewEvents,
		BackOff:       exponentialBackoff(MaxDeliveryAttempts),
		Description:   "Recomputes denormalized product ratings",
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	s.logger.With("consumer", RatingConsumer).Info("JetStream consumer created")
	return nil
}
