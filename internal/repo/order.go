package repo

import (
	"context"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderRepository interface {
	// CreateWithNumber allocates the next sequence for day and inserts the
	// order in the same transaction, setting ID and OrderNumber on success.
	CreateWithNumber(ctx context.Context, order *domain.Order, day string) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	ListActive(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus moves the order from one status to another only if it is
	// still at from. A mismatch returns domain.ErrStatusConflict.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus, at time.Time) (*domain.Order, error)
	// WatchOrders opens a change stream, calls onOpen once it is live, then
	// blocks calling fn for every inserted or updated order until ctx is
	// done or the stream fails.
	WatchOrders(ctx context.Context, onOpen func(context.Context) error, fn func(domain.Order) error) error
}
