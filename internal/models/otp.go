package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxOTPAttempts is the number of wrong codes tolerated before the record
// is invalidated and a fresh OTP must be requested.
const MaxOTPAttempts = 3

// OTP is a one-time verification code delivered over SMS. At most one
// live record exists per email; reissuing replaces the previous one.
type OTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Code      string             `bson:"code" json:"-"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Expired reports whether the code is past its validity window.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// Exhausted reports whether the attempt budget has been used up.
func (o *OTP) Exhausted() bool {
	return o.Attempts >= MaxOTPAttempts
}
