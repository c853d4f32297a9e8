package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductCollection is the collection product documents live in.
const ProductCollection = "products"

// MaxPhotoBytes caps the embedded product photo size.
const MaxPhotoBytes = 1000000

// Photo is an image stored inline on the product document.
type Photo struct {
	Data        []byte `bson:"data,omitempty" json:"-"`
	ContentType string `bson:"content_type,omitempty" json:"content_type,omitempty"`
}

// Product represents a catalog item. Slug is derived from the name at write
// time; uniqueness is not enforced, so two products with the same name share
// a slug.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Shipping    bool               `bson:"shipping" json:"shipping"`
	Photo       Photo              `bson:"photo,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
