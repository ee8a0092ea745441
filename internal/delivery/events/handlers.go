package events

import (
	"encoding/json"
	"fmt"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// ReviewEventLogger surfaces flagged reviews to moderators and logs other mutations at debug level
func ReviewEventLogger(log *logger.Logger) Handler {
	return func(data []byte) error {
		var event domain.ReviewEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("failed to unmarshal review event: %w", err)
		}

		entry := log.WithFields(map[string]interface{}{
			"event_type": event.EventType,
			"product_id": event.ProductID.String(),
			"review_id":  event.ReviewID.String(),
			"timestamp":  event.Timestamp,
		})

		if event.EventType == domain.EventReviewFlagged {
			entry.Warn("Review flagged, moderation needed")
			return nil
		}
		entry.Debug("Review event")
		return nil
	}
}

// RevalidateLogger logs the storefront paths announced as stale
func RevalidateLogger(log *logger.Logger) Handler {
	return func(data []byte) error {
		var signal domain.RevalidateSignal
		if err := json.Unmarshal(data, &signal); err != nil {
			return fmt.Errorf("failed to unmarshal revalidate signal: %w", err)
		}
		if len(signal.Paths) == 0 {
			return fmt.Errorf("revalidate signal for product %s carries no paths", signal.ProductID)
		}

		log.WithFields(map[string]interface{}{
			"product_id": signal.ProductID.String(),
			"paths":      signal.Paths,
		}).Info("Storefront paths revalidated")
		return nil
	}
}
