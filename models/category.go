package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryCollection is the collection category documents live in.
const CategoryCollection = "categories"

// Category groups products for browsing. Products hold a reference to it.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`
}
