package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCollection is the collection user documents live in.
const UserCollection = "users"

// Role values stored on the user document. The field is an unconstrained int
// in the database; these two values are the domain used in practice.
const (
	RoleCustomer = 0
	RoleAdmin    = 1
)

// User represents a registered account.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Phone     string             `bson:"phone" json:"phone"`
	Address   string             `bson:"address" json:"address"`
	Answer    string             `bson:"answer" json:"-"`
	Role      int                `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
