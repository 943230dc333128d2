package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// counterRetries bounds retries of the first-of-day race, where two upserts
// on a missing counter collide on its _id.
const counterRetries = 3

type OrderRepository struct {
	storage  *Storage
	orders   *mongo.Collection
	counters *mongo.Collection
}

func NewOrderRepository(storage *Storage) *OrderRepository {
	db := storage.Database()
	return &OrderRepository{
		storage:  storage,
		orders:   db.Collection(collectionOrders),
		counters: db.Collection(collectionCounters),
	}
}

type dayCounter struct {
	ID  string `bson:"_id"`
	Day string `bson:"day"`
	Seq int64  `bson:"seq"`
}

func counterID(day string) string {
	return "orders-" + day
}

func (r *OrderRepository) CreateWithNumber(ctx context.Context, order *domain.Order, day string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < counterRetries; attempt++ {
		var doc domain.Order
		err := r.storage.WithTransaction(ctx, func(sc mongo.SessionContext) error {
			var counter dayCounter
			err := r.counters.FindOneAndUpdate(sc,
				bson.M{"_id": counterID(day)},
				bson.M{
					"$inc":         bson.M{"seq": 1},
					"$setOnInsert": bson.M{"day": day},
				},
				options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
			).Decode(&counter)
			if err != nil {
				return fmt.Errorf("failed to increment day counter: %w", err)
			}

			doc = *order
			doc.ID = primitive.NewObjectID()
			doc.OrderNumber = domain.FormatOrderNumber(day, counter.Seq)

			if _, err := r.orders.InsertOne(sc, doc); err != nil {
				return fmt.Errorf("failed to insert order: %w", err)
			}
			return nil
		})
		if err == nil {
			*order = doc
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create order: %w", err)
		}
		lastErr = err
	}

	return fmt.Errorf("failed to create order after %d attempts: %w", counterRetries, lastErr)
}

func (r *OrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var order domain.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("order", id.Hex())
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (r *OrderRepository) ListActive(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"status": bson.M{"$in": domain.ActiveStatuses}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []domain.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus, at time.Time) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "status": from}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": at,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order domain.Order
	err := r.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	n, err := r.orders.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check order: %w", err)
	}
	if n == 0 {
		return nil, domain.NotFound("order", id.Hex())
	}
	return nil, domain.ErrStatusConflict
}

type orderChange struct {
	OperationType string       `bson:"operationType"`
	FullDocument  domain.Order `bson:"fullDocument"`
}

func (r *OrderRepository) WatchOrders(ctx context.Context, onOpen func(context.Context) error, fn func(domain.Order) error) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace"}}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.orders.Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to open order change stream: %w", err)
	}
	defer stream.Close(context.Background())

	// changes made while onOpen runs are buffered by the stream
	if onOpen != nil {
		if err := onOpen(ctx); err != nil {
			return err
		}
	}

	for stream.Next(ctx) {
		var change orderChange
		if err := stream.Decode(&change); err != nil {
			return fmt.Errorf("failed to decode order change: %w", err)
		}
		// update lookups race with deletes
		if change.FullDocument.ID.IsZero() {
			continue
		}
		if err := fn(change.FullDocument); err != nil {
			return err
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("order change stream failed: %w", err)
	}
	return ctx.Err()
}
