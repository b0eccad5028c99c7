package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/mystore/internal/models"
)

// OrderRepository is the persistence contract for placed orders. Orders
// are insert-only here; fulfillment status changes are out of scope.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]models.Order, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type mongoOrderRepo struct {
	col *mongo.Collection
}

// NewMongoOrderRepo builds the orders collection accessor with the
// listing index.
func NewMongoOrderRepo(db *mongo.Database) OrderRepository {
	col := db.Collection("orders")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &mongoOrderRepo{col: col}
}

func (r *mongoOrderRepo) Insert(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

// ListByUser returns the user's orders newest first. A limit of zero
// returns the full history.
func (r *mongoOrderRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit)).SetSkip(int64(offset))
	}

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *mongoOrderRepo) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"user_id": userID})
}
