package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/javacachava/pizza-brava-sub000/internal/clock"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/kitchen"
	"github.com/javacachava/pizza-brava-sub000/internal/metrics"
	"github.com/javacachava/pizza-brava-sub000/internal/queue"
	"github.com/javacachava/pizza-brava-sub000/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type KitchenService struct {
	orderRepo repo.OrderRepository
	board     *kitchen.Board
	broker    queue.Broker
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
}

func NewKitchenService(
	orderRepo repo.OrderRepository,
	board *kitchen.Board,
	broker queue.Broker,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) *KitchenService {
	return &KitchenService{
		orderRepo: orderRepo,
		board:     board,
		broker:    broker,
		clock:     clk,
		metrics:   m,
		logger:    logger,
	}
}

// Advance moves the order one step along pending, preparing, ready,
// delivered. An order with no successor is returned unchanged. If another
// terminal moved the order first, ErrStatusConflict is returned and nothing
// is written.
func (s *KitchenService) Advance(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, domain.NotFound("order", orderID)
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	next, ok := order.Status.Next()
	if !ok {
		s.logger.Warnw("advance on order without successor", "order_id", orderID, "status", order.Status)
		return order, nil
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, order.Status, next, s.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			s.logger.Infow("advance lost race", "order_id", orderID, "from", order.Status, "actor", actor.ID)
		}
		return nil, fmt.Errorf("failed to advance order: %w", err)
	}

	// reflect locally without waiting for the change stream
	s.board.Apply(*updated)
	s.metrics.StatusTransition(string(order.Status), string(next))

	s.logger.Infow("order advanced", "order_id", orderID, "order_number", updated.OrderNumber, "from", order.Status, "to", next, "actor", actor.ID)

	publishOrderEvent(ctx, s.broker, s.logger, domain.OrderStatusEvent{
		EventType:   domain.EventOrderStatusChanged,
		OrderID:     orderID,
		OrderNumber: updated.OrderNumber,
		OldStatus:   order.Status,
		NewStatus:   next,
		Timestamp:   updated.UpdatedAt,
		UserID:      actor.ID,
	})

	return updated, nil
}

func (s *KitchenService) Board() kitchen.Snapshot {
	return s.board.Snapshot()
}

func (s *KitchenService) Subscribe() *kitchen.Subscription {
	return s.board.Subscribe()
}

// CloseSubscribers ends every live board stream, used on shutdown.
func (s *KitchenService) CloseSubscribers() {
	s.board.CloseSubscribers()
}
