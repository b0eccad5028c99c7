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

var ErrOTPNotFound = errors.New("otp not found")

// OTPRepository is the persistence contract for one-time codes.
type OTPRepository interface {
	// Replace removes any live codes for the email and inserts the new
	// record, keeping at most one live OTP per email.
	Replace(ctx context.Context, otp *models.OTP) error
	Find(ctx context.Context, email string, userID primitive.ObjectID) (*models.OTP, error)
	// IncrementAttempts atomically bumps the failed-attempt counter and
	// returns the new value.
	IncrementAttempts(ctx context.Context, id primitive.ObjectID) (int, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoOTPRepo struct {
	col *mongo.Collection
}

// NewMongoOTPRepo builds the otps collection accessor with the email
// lookup index.
func NewMongoOTPRepo(db *mongo.Database) OTPRepository {
	col := db.Collection("otps")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	return &mongoOTPRepo{col: col}
}

func (r *mongoOTPRepo) Replace(ctx context.Context, otp *models.OTP) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"email": otp.Email}); err != nil {
		return err
	}

	otp.CreatedAt = time.Now().UTC()
	res, err := r.col.InsertOne(ctx, otp)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		otp.ID = id
	}
	return nil
}

func (r *mongoOTPRepo) Find(ctx context.Context, email string, userID primitive.ObjectID) (*models.OTP, error) {
	var otp models.OTP
	err := r.col.FindOne(ctx, bson.M{"email": email, "user_id": userID}).Decode(&otp)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *mongoOTPRepo) IncrementAttempts(ctx context.Context, id primitive.ObjectID) (int, error) {
	var updated models.OTP
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return 0, ErrOTPNotFound
	}
	if err != nil {
		return 0, err
	}
	return updated.Attempts, nil
}

func (r *mongoOTPRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
