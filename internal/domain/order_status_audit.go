package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatusAudit struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID     string             `bson:"order_id" json:"order_id"`
	OrderNumber string             `bson:"order_number" json:"order_number"`
	EventType   string             `bson:"event_type" json:"event_type"`
	OldStatus   OrderStatus        `bson:"old_status,omitempty" json:"old_status,omitempty"`
	NewStatus   OrderStatus        `bson:"new_status" json:"new_status"`
	UserID      string             `bson:"user_id" json:"user_id"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
