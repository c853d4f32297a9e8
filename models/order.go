package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderCollection is the collection order documents live in.
const OrderCollection = "orders"

// Order statuses, progressed by admin action. Stored as plain strings.
const (
	StatusNotProcess = "Not Process"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// OrderStatuses lists the accepted values for a status update.
var OrderStatuses = []string{
	StatusNotProcess,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Order records a purchase: which products, who bought them, and how far
// along fulfilment is.
type Order struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Products      []primitive.ObjectID `bson:"products" json:"products"`
	Buyer         primitive.ObjectID   `bson:"buyer" json:"buyer"`
	Status        string               `bson:"status" json:"status"`
	TotalAmount   float64              `bson:"total_amount" json:"total_amount"`
	PaymentMethod string               `bson:"payment_method" json:"payment_method"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}

// ValidStatus reports whether s is one of the accepted order statuses.
func ValidStatus(s string) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}
