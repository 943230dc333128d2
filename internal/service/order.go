package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/cart"
	"github.com/javacachava/pizza-brava-sub000/internal/checkout"
	"github.com/javacachava/pizza-brava-sub000/internal/clock"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/metrics"
	"github.com/javacachava/pizza-brava-sub000/internal/money"
	"github.com/javacachava/pizza-brava-sub000/internal/queue"
	"github.com/javacachava/pizza-brava-sub000/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type OrderConfig struct {
	TaxRate       float64
	SubmitTimeout time.Duration
}

type OrderService struct {
	orderRepo repo.OrderRepository
	cartRepo  repo.CartRepository
	broker    queue.Broker
	clock     clock.Clock
	metrics   *metrics.Metrics
	config    OrderConfig
	logger    *zap.SugaredLogger
}

func NewOrderService(
	orderRepo repo.OrderRepository,
	cartRepo repo.CartRepository,
	broker queue.Broker,
	clk clock.Clock,
	m *metrics.Metrics,
	cfg OrderConfig,
	logger *zap.SugaredLogger,
) *OrderService {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 5 * time.Second
	}
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		broker:    broker,
		clock:     clk,
		metrics:   m,
		config:    cfg,
		logger:    logger,
	}
}

// PlaceOrder validates the cart and persists it as a pending order with the
// next number of the day. Any failure after validation is ErrSubmitFailed;
// nothing is persisted in that case.
func (s *OrderService) PlaceOrder(ctx context.Context, c cart.Cart, orderType domain.OrderType, meta domain.OrderMeta, actor domain.Actor) (*domain.Order, error) {
	if err := checkout.Validate(c, orderType, meta); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	subtotal := c.Total()
	tax := money.Rate(subtotal, s.config.TaxRate)

	order := &domain.Order{
		Items:     c.Snapshot(),
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     money.Add(subtotal, tax),
		Status:    domain.StatusPending,
		OrderType: orderType,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch orderType {
	case domain.OrderTypeDineIn:
		order.TableID = strings.TrimSpace(meta.TableID)
	case domain.OrderTypeTakeaway:
		order.Customer = &domain.Customer{Name: strings.TrimSpace(meta.CustomerName)}
	case domain.OrderTypeDelivery:
		order.Customer = &domain.Customer{
			Name:    strings.TrimSpace(meta.CustomerName),
			Phone:   strings.TrimSpace(meta.Phone),
			Address: strings.TrimSpace(meta.Address),
		}
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.config.SubmitTimeout)
	defer cancel()

	start := time.Now()
	if err := s.orderRepo.CreateWithNumber(submitCtx, order, domain.DayKey(now)); err != nil {
		reason := "store"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		s.metrics.SubmitFailed(reason)
		s.logger.Errorw("failed to submit order", "order_type", orderType, "reason", reason, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrSubmitFailed, err)
	}
	s.metrics.OrderSubmitted(string(orderType), time.Since(start))

	s.logger.Infow("order submitted", "order_id", order.ID.Hex(), "order_number", order.OrderNumber, "order_type", orderType, "total", order.Total)

	publishOrderEvent(ctx, s.broker, s.logger, domain.OrderStatusEvent{
		EventType:   domain.EventOrderCreated,
		OrderID:     order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		NewStatus:   order.Status,
		Timestamp:   now,
		UserID:      actor.ID,
	})

	return order, nil
}

// Checkout claims the stored cart, submits it and deletes it once the order
// is persisted. On failure the claim is released and the cart is left as it
// was. A cart can be checked out once.
func (s *OrderService) Checkout(ctx context.Context, cartID string, orderType domain.OrderType, meta domain.OrderMeta, actor domain.Actor) (*domain.Order, error) {
	session, err := s.cartRepo.Claim(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim cart: %w", err)
	}

	order, err := s.PlaceOrder(ctx, session.Cart, orderType, meta, actor)
	if err != nil {
		if rerr := s.cartRepo.Release(context.WithoutCancel(ctx), cartID); rerr != nil {
			s.logger.Warnw("failed to release cart after failed checkout", "cart_id", cartID, "error", rerr)
		}
		return nil, err
	}

	if err := s.cartRepo.Delete(ctx, cartID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnw("failed to clear cart after checkout", "cart_id", cartID, "order_id", order.ID.Hex(), "error", err)
	}

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NotFound("order", id)
	}

	order, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}
