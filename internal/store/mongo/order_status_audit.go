package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const auditTimelineIndex = "order_timeline"

// OrderStatusAuditRepository keeps one record per status an order reached.
// Status only moves forward, so order id and new status identify an event
// and a redelivered message leaves the trail unchanged.
type OrderStatusAuditRepository struct {
	collection *mongo.Collection
}

func NewOrderStatusAuditRepository(db *mongo.Database) *OrderStatusAuditRepository {
	return &OrderStatusAuditRepository{
		collection: db.Collection(collectionOrderStatusAudit),
	}
}

func auditEventFilter(audit *domain.OrderStatusAudit) bson.D {
	return bson.D{
		{Key: "order_id", Value: audit.OrderID},
		{Key: "new_status", Value: audit.NewStatus},
	}
}

func auditTimelineOptions(limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetHint(auditTimelineIndex)
}

func (r *OrderStatusAuditRepository) Create(ctx context.Context, audit *domain.OrderStatusAudit) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if audit.ID.IsZero() {
		audit.ID = primitive.NewObjectID()
	}
	if audit.Timestamp.IsZero() {
		audit.Timestamp = time.Now()
	}

	_, err := r.collection.UpdateOne(ctx,
		auditEventFilter(audit),
		bson.M{"$setOnInsert": audit},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s for order %s: %w", audit.NewStatus, audit.OrderID, err)
	}
	return nil
}

// GetByOrderID lists the trail newest first.
func (r *OrderStatusAuditRepository) GetByOrderID(ctx context.Context, orderID string, limit int) ([]domain.OrderStatusAudit, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID}, auditTimelineOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query status trail for order %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	audits := make([]domain.OrderStatusAudit, 0, limit)
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, fmt.Errorf("failed to decode status trail for order %s: %w", orderID, err)
	}

	return audits, nil
}
