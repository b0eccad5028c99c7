package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD  = "COD"
	PaymentMethodCard = "Card"
	PaymentMethodUPI  = "UPI"
)

// Payment statuses. No gateway integration exists; the status is set once
// at placement and left to fulfillment afterwards.
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusFailed  = "Failed"
)

// Order statuses driven by the fulfillment process.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodUPI:
		return true
	}
	return false
}

// Address is the delivery address captured at placement time.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// Empty reports whether no address field was provided.
func (a Address) Empty() bool {
	return a == Address{}
}

// Order is an immutable snapshot of a cart plus payment and fulfillment
// metadata. Items and TotalAmount are copied verbatim from the cart at
// placement and never change afterwards.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items         []CartItem         `bson:"items" json:"items"`
	TotalAmount   float64            `bson:"total_amount" json:"total_amount"`
	Address       Address            `bson:"address" json:"address"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	PaymentStatus string             `bson:"payment_status" json:"payment_status"`
	OrderStatus   string             `bson:"order_status" json:"order_status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
