package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartCollection is the collection cart documents live in.
const CartCollection = "carts"

// CartItem is a product reference with a quantity inside a cart.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart holds a user's pending items. One cart per user; it is deleted when an
// order is placed from it.
type Cart struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items  []CartItem         `bson:"items" json:"items"`
}
