package service

import (
	"context"
	"fmt"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/repo"
	"go.uber.org/zap"
)

const defaultAuditLimit = 50

type AuditService struct {
	auditRepo repo.OrderStatusAuditRepository
	logger    *zap.SugaredLogger
}

func NewAuditService(auditRepo repo.OrderStatusAuditRepository, logger *zap.SugaredLogger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (s *AuditService) ProcessOrderStatusEvent(ctx context.Context, event domain.OrderStatusEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	audit := &domain.OrderStatusAudit{
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		EventType:   event.EventType,
		OldStatus:   event.OldStatus,
		NewStatus:   event.NewStatus,
		UserID:      event.UserID,
		Timestamp:   event.Timestamp,
	}

	if err := s.auditRepo.Create(ctx, audit); err != nil {
		s.logger.Errorw("failed to create audit record", "order_id", event.OrderID, "error", err)
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	s.logger.Infow("order status audit created", "order_id", event.OrderID, "event_type", event.EventType, "new_status", event.NewStatus)

	return nil
}

func (s *AuditService) GetOrderAudit(ctx context.Context, orderID string, limit int) ([]domain.OrderStatusAudit, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultAuditLimit
	}

	audits, err := s.auditRepo.GetByOrderID(ctx, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get order audit: %w", err)
	}

	return audits, nil
}
