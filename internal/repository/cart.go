package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/mystore/internal/models"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository is the persistence contract for per-user carts.
// Save replaces the whole document keyed by user_id, so concurrent saves
// for the same user are last-writer-wins; see DESIGN.md.
type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	// Delete removes the user's cart and reports whether one existed.
	Delete(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

type mongoCartRepo struct {
	col *mongo.Collection
}

// NewMongoCartRepo builds the carts collection accessor and ensures the
// one-cart-per-user index exists.
func NewMongoCartRepo(db *mongo.Database) CartRepository {
	col := db.Collection("carts")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoCartRepo{col: col}
}

func (r *mongoCartRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *mongoCartRepo) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}

	_, err := r.col.ReplaceOne(ctx,
		bson.M{"user_id": cart.UserID},
		cart,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *mongoCartRepo) Delete(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
