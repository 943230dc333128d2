package service

import (
	"context"
	"testing"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessOrderStatusEvent(t *testing.T) {
	audits := &fakeAudits{}
	svc := NewAuditService(audits, nopLogger())
	ctx := context.Background()

	err := svc.ProcessOrderStatusEvent(ctx, domain.OrderStatusEvent{
		EventType:   domain.EventOrderStatusChanged,
		OrderID:     "o1",
		OrderNumber: "20240315-0001",
		OldStatus:   domain.StatusPending,
		NewStatus:   domain.StatusPreparing,
		Timestamp:   serviceDay,
		UserID:      cook.ID,
	})
	require.NoError(t, err)

	err = svc.ProcessOrderStatusEvent(ctx, domain.OrderStatusEvent{EventType: domain.EventOrderCreated, OrderID: "o2"})
	require.NoError(t, err)

	got, err := svc.GetOrderAudit(ctx, "o1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusPreparing, got[0].NewStatus)
	assert.Equal(t, cook.ID, got[0].UserID)
	assert.Equal(t, defaultAuditLimit, audits.limit)

	assert.WithinDuration(t, time.Now(), audits.records[1].Timestamp, time.Minute, "missing timestamps are filled in")
}

func TestGetOrderAuditLimit(t *testing.T) {
	audits := &fakeAudits{}
	svc := NewAuditService(audits, nopLogger())

	_, err := svc.GetOrderAudit(context.Background(), "o1", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, audits.limit)

	_, err = svc.GetOrderAudit(context.Background(), "o1", 1000)
	require.NoError(t, err)
	assert.Equal(t, defaultAuditLimit, audits.limit)
}
