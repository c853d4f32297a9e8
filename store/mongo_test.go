package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilterToBsonLiterals(t *testing.T) {
	id := primitive.NewObjectID()
	f := Filter{"slug": "blue-mug", "category": id}

	require.Equal(t, bson.M{"slug": "blue-mug", "category": id}, f.toBson())
}

func TestFilterToBsonMatchValues(t *testing.T) {
	id := primitive.NewObjectID()
	other := primitive.NewObjectID()

	f := Filter{
		"price":    Range{Min: 10, Max: 50},
		"category": In{id, other},
		"name":     Regex{Pattern: "mug"},
		"_id":      Ne{Value: id},
	}

	require.Equal(t, bson.M{
		"price":    bson.M{"$gte": 10.0, "$lte": 50.0},
		"category": bson.M{"$in": []any{id, other}},
		"name":     bson.M{"$regex": "mug", "$options": "i"},
		"_id":      bson.M{"$ne": id},
	}, f.toBson())
}

func TestFilterToBsonAnyOf(t *testing.T) {
	f := AnyOf(
		Filter{"name": Regex{Pattern: "mug"}},
		Filter{"description": Regex{Pattern: "mug"}},
	)

	require.Equal(t, bson.M{
		"$or": []bson.M{
			{"name": bson.M{"$regex": "mug", "$options": "i"}},
			{"description": bson.M{"$regex": "mug", "$options": "i"}},
		},
	}, f.toBson())
}

func TestProjection(t *testing.T) {
	require.Nil(t, projection(nil))
	require.Equal(t, bson.M{"name": 1, "price": 1}, projection([]string{"name", "price"}))
	require.Equal(t, bson.M{"photo": 0}, projection([]string{"-photo"}))
}

func TestSortDoc(t *testing.T) {
	require.Nil(t, sortDoc(nil))
	require.Equal(t, bson.D{
		{Key: "created_at", Value: -1},
		{Key: "name", Value: 1},
	}, sortDoc([]Sort{
		{Field: "created_at", Desc: true},
		{Field: "name"},
	}))
}

func TestUpdateToBson(t *testing.T) {
	require.Equal(t, bson.M{"$set": bson.M{"name": "x"}},
		Update{Set: map[string]any{"name": "x"}}.toBson())

	require.Equal(t, bson.M{"$inc": bson.M{"quantity": -2}},
		Update{Inc: map[string]any{"quantity": -2}}.toBson())

	require.Equal(t, bson.M{
		"$set": bson.M{"status": "Shipped"},
		"$inc": bson.M{"quantity": 1},
	}, Update{
		Set: map[string]any{"status": "Shipped"},
		Inc: map[string]any{"quantity": 1},
	}.toBson())

	require.Empty(t, Update{}.toBson())
}

func TestDecodeSliceRequiresSlicePointer(t *testing.T) {
	var wrong int
	err := decodeSlice(nil, &wrong)
	require.Error(t, err)

	type doc struct {
		Name string `bson:"name"`
	}
	out := []doc{}
	require.NoError(t, decodeSlice([]bson.M{{"name": "a"}, {"name": "b"}}, &out))
	require.Equal(t, []doc{{Name: "a"}, {Name: "b"}}, out)
}
