package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors returned by Store implementations. Controllers branch on these with
// errors.Is instead of matching driver error values.
var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Store is the persistence contract the controllers consume. Out arguments
// follow the driver convention: a pointer to a struct for single-document
// reads, a pointer to a slice for Find.
type Store interface {
	Find(ctx context.Context, collection string, q Query, out any) error
	FindOne(ctx context.Context, collection string, q Query, out any) error
	FindByID(ctx context.Context, collection string, id primitive.ObjectID, q Query, out any) error
	InsertOne(ctx context.Context, collection string, doc any) (primitive.ObjectID, error)
	UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, u Update) error
	FindByIDAndUpdate(ctx context.Context, collection string, id primitive.ObjectID, u Update, q Query, out any) error
	FindByIDAndDelete(ctx context.Context, collection string, id primitive.ObjectID) error
	DeleteOne(ctx context.Context, collection string, f Filter) error
	Count(ctx context.Context, collection string, f Filter) (int64, error)
	EstimatedCount(ctx context.Context, collection string) (int64, error)
}
