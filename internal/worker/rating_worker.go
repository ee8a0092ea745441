package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

const (
	// events for the same product inside this window collapse into one recalculation
	debounceWindow = 1 * time.Second

	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	attemptTimeout = 5 * time.Second
)

// Recalculator rebuilds the rating columns of one product
type Recalculator interface {
	Recalculate(ctx context.Context, productID uuid.UUID) error
}

// RatingWorker turns review events into debounced rating recalculations
type RatingWorker struct {
	calculator Recalculator
	logger     *logger.Logger
	debounce   time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingUpdate
	closed  bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type pendingUpdate struct {
	timestamp time.Time
	timer     *time.Timer
}

// NewRatingWorker creates a new rating worker
func NewRatingWorker(calculator Recalculator, log *logger.Logger) *RatingWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &RatingWorker{
		calculator: calculator,
		logger:     log,
		debounce:   debounceWindow,
		pending:    make(map[uuid.UUID]*pendingUpdate),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// HandleEvent schedules a recalculation for events that can change approved ratings.
// Votes, replies and flags are acknowledged without work.
func (w *RatingWorker) HandleEvent(data []byte) error {
	var event domain.ReviewEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	fields := map[string]any{
		"event_type": event.EventType,
		"product_id": event.ProductID.String(),
		"timestamp":  event.Timestamp,
	}

	if !event.EventType.AffectsRating() {
		w.logger.WithFields(fields).Debug("Skipping event that does not affect ratings")
		return nil
	}
	if event.ProductID == uuid.Nil {
		return fmt.Errorf("event %s for review %s has no product", event.EventType, event.ReviewID)
	}

	w.logger.WithFields(fields).Info("Received review event")
	w.scheduleUpdate(event.ProductID, event.Timestamp)
	return nil
}

// scheduleUpdate (re)arms the debounce timer of a product. Each armed timer holds
// one WaitGroup slot that its callback releases.
func (w *RatingWorker) scheduleUpdate(productID uuid.UUID, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	}

	if existing, found := w.pending[productID]; found {
		if timestamp.Before(existing.timestamp) {
			w.logger.WithFields(map[string]any{
				"product_id":  productID.String(),
				"existing_ts": existing.timestamp,
				"event_ts":    timestamp,
			}).Debug("Ignoring stale event")
			return
		}

		// a timer that already fired releases its own slot
		if !existing.timer.Stop() {
			w.wg.Add(1)
		}
	} else {
		w.wg.Add(1)
	}

	update := &pendingUpdate{timestamp: timestamp}
	update.timer = time.AfterFunc(w.debounce, func() {
		w.processUpdate(productID, update)
	})
	w.pending[productID] = update
}

// processUpdate recalculates with exponential backoff between attempts
func (w *RatingWorker) processUpdate(productID uuid.UUID, update *pendingUpdate) {
	defer w.wg.Done()

	w.mu.Lock()
	if w.pending[productID] == update {
		delete(w.pending, productID)
	}
	w.mu.Unlock()

	log := w.logger.With("product_id", productID.String())
	log.Info("Processing rating update")

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			log.WithFields(map[string]any{
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying rating update")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				log.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, attemptTimeout)
		err := w.calculator.Recalculate(ctx, productID)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		log.With("attempt", attempt+1).Error("Failed to update rating", err)
	}

	log.With("max_retries", maxRetries).Error("Rating update failed after all retries", lastErr)
}

// Shutdown stops accepting events, cancels timers that have not fired and waits
// for in-flight recalculations until ctx expires
func (w *RatingWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down rating worker...")

	w.mu.Lock()
	w.closed = true
	cancelled := 0
	for productID, update := range w.pending {
		if update.timer.Stop() {
			w.wg.Done()
			cancelled++
		}
		delete(w.pending, productID)
	}
	w.mu.Unlock()

	w.logger.With("cancelled_updates", cancelled).Info("Cancelled pending updates")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		w.logger.Info("All in-flight updates completed")
		return nil
	case <-ctx.Done():
		w.cancel()
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// Pending returns the number of products waiting for their debounce window
func (w *RatingWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
