package service

import (
	"context"
	"encoding/json"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/queue"
	"go.uber.org/zap"
)

// publishOrderEvent is best effort: the order is already persisted and the
// audit trail must not block the kitchen.
func publishOrderEvent(ctx context.Context, broker queue.Broker, logger *zap.SugaredLogger, event domain.OrderStatusEvent) {
	if broker == nil {
		return
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		logger.Errorw("failed to marshal order event", "order_id", event.OrderID, "error", err)
		return
	}

	if err := broker.Publish(ctx, queue.QueueOrderStatus, eventBytes); err != nil {
		logger.Warnw("failed to publish order event", "order_id", event.OrderID, "event_type", event.EventType, "error", err)
	}
}
