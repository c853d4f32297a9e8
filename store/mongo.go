package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo executes queries against a MongoDB database.
type Mongo struct {
	db *mongo.Database
}

// NewMongo wraps a connected database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// EnsureUniqueIndex creates a unique index on field. Called once at startup;
// this is how email uniqueness is enforced.
func (m *Mongo) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	_, err := m.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create unique index on %s.%s: %w", collection, field, err)
	}
	return nil
}

func (f Filter) toBson() bson.M {
	out := bson.M{}
	for key, value := range f {
		if key == orKey {
			branches, ok := value.([]Filter)
			if !ok {
				out[key] = value
				continue
			}
			translated := make([]bson.M, 0, len(branches))
			for _, branch := range branches {
				translated = append(translated, branch.toBson())
			}
			out["$or"] = translated
			continue
		}
		switch v := value.(type) {
		case Range:
			out[key] = bson.M{"$gte": v.Min, "$lte": v.Max}
		case In:
			out[key] = bson.M{"$in": []any(v)}
		case Regex:
			out[key] = bson.M{"$regex": v.Pattern, "$options": "i"}
		case Ne:
			out[key] = bson.M{"$ne": v.Value}
		default:
			out[key] = v
		}
	}
	return out
}

func projection(fields []string) bson.M {
	if len(fields) == 0 {
		return nil
	}
	proj := bson.M{}
	for _, field := range fields {
		if name, excluded := strings.CutPrefix(field, "-"); excluded {
			proj[name] = 0
		} else {
			proj[field] = 1
		}
	}
	return proj
}

func sortDoc(sorts []Sort) bson.D {
	if len(sorts) == 0 {
		return nil
	}
	doc := make(bson.D, 0, len(sorts))
	for _, s := range sorts {
		order := 1
		if s.Desc {
			order = -1
		}
		doc = append(doc, bson.E{Key: s.Field, Value: order})
	}
	return doc
}

func (u Update) toBson() bson.M {
	doc := bson.M{}
	if len(u.Set) > 0 {
		doc["$set"] = bson.M(u.Set)
	}
	if len(u.Inc) > 0 {
		doc["$inc"] = bson.M(u.Inc)
	}
	return doc
}

// Find runs the query and decodes all matches into out, a pointer to a
// slice. When the query carries populate stages the reference fields are
// resolved against their collections before decoding.
func (m *Mongo) Find(ctx context.Context, collection string, q Query, out any) error {
	opts := options.Find()
	if proj := projection(q.Projection); proj != nil {
		opts.SetProjection(proj)
	}
	if sort := sortDoc(q.Sorts); sort != nil {
		opts.SetSort(sort)
	}
	if q.Offset > 0 {
		opts.SetSkip(q.Offset)
	}
	if q.Max > 0 {
		opts.SetLimit(q.Max)
	}

	cursor, err := m.db.Collection(collection).Find(ctx, q.Filter.toBson(), opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if len(q.Populates) == 0 {
		return cursor.All(ctx, out)
	}

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return err
	}
	if err := m.resolve(ctx, raws, q.Populates); err != nil {
		return err
	}
	return decodeSlice(raws, out)
}

// FindOne runs the query and decodes the first match into out. Returns
// ErrNotFound when nothing matches.
func (m *Mongo) FindOne(ctx context.Context, collection string, q Query, out any) error {
	opts := options.FindOne()
	if proj := projection(q.Projection); proj != nil {
		opts.SetProjection(proj)
	}
	if sort := sortDoc(q.Sorts); sort != nil {
		opts.SetSort(sort)
	}

	res := m.db.Collection(collection).FindOne(ctx, q.Filter.toBson(), opts)
	if len(q.Populates) == 0 {
		return translateErr(res.Decode(out))
	}

	var raw bson.M
	if err := res.Decode(&raw); err != nil {
		return translateErr(err)
	}
	if err := m.resolve(ctx, []bson.M{raw}, q.Populates); err != nil {
		return err
	}
	return decodeDoc(raw, out)
}

// FindByID is FindOne constrained to a single document id.
func (m *Mongo) FindByID(ctx context.Context, collection string, id primitive.ObjectID, q Query, out any) error {
	filter := Filter{"_id": id}
	for key, value := range q.Filter {
		filter[key] = value
	}
	q.Filter = filter
	return m.FindOne(ctx, collection, q, out)
}

// InsertOne stores doc and returns its generated id. A unique index
// violation is reported as ErrDuplicate.
func (m *Mongo) InsertOne(ctx context.Context, collection string, doc any) (primitive.ObjectID, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("store: unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// UpdateByID applies the update to the document with the given id.
func (m *Mongo) UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, u Update) error {
	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, u.toBson())
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByIDAndUpdate applies the update and decodes the post-update document
// into out when out is non-nil. Only the query's projection stage is applied;
// populate is not supported on writes.
func (m *Mongo) FindByIDAndUpdate(ctx context.Context, collection string, id primitive.ObjectID, u Update, q Query, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if proj := projection(q.Projection); proj != nil {
		opts.SetProjection(proj)
	}
	res := m.db.Collection(collection).FindOneAndUpdate(ctx, bson.M{"_id": id}, u.toBson(), opts)
	if out == nil {
		return translateErr(res.Err())
	}
	return translateErr(res.Decode(out))
}

// FindByIDAndDelete removes the document with the given id, reporting
// ErrNotFound when it does not exist.
func (m *Mongo) FindByIDAndDelete(ctx context.Context, collection string, id primitive.ObjectID) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOne removes the first document matching f. Deleting a document that
// is already gone is not an error.
func (m *Mongo) DeleteOne(ctx context.Context, collection string, f Filter) error {
	_, err := m.db.Collection(collection).DeleteOne(ctx, f.toBson())
	return err
}

// Count returns the number of documents matching f.
func (m *Mongo) Count(ctx context.Context, collection string, f Filter) (int64, error) {
	return m.db.Collection(collection).CountDocuments(ctx, f.toBson())
}

// EstimatedCount returns the collection size from metadata, without a scan.
func (m *Mongo) EstimatedCount(ctx context.Context, collection string) (int64, error) {
	return m.db.Collection(collection).EstimatedDocumentCount(ctx)
}

// resolve replaces reference fields in raws with the referenced documents,
// one lookup per populate stage. Scalar references resolve to the document
// or nil when missing; array references resolve element-wise, dropping
// missing entries.
func (m *Mongo) resolve(ctx context.Context, raws []bson.M, pops []Populate) error {
	for _, p := range pops {
		idSet := map[primitive.ObjectID]struct{}{}
		for _, raw := range raws {
			switch v := raw[p.Field].(type) {
			case primitive.ObjectID:
				idSet[v] = struct{}{}
			case primitive.A:
				for _, el := range v {
					if id, ok := el.(primitive.ObjectID); ok {
						idSet[id] = struct{}{}
					}
				}
			}
		}
		if len(idSet) == 0 {
			continue
		}

		ids := make([]any, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		opts := options.Find()
		if proj := projection(p.Select); proj != nil {
			opts.SetProjection(proj)
		}
		cursor, err := m.db.Collection(p.From).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
		if err != nil {
			return fmt.Errorf("populate %s from %s: %w", p.Field, p.From, err)
		}
		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return fmt.Errorf("populate %s from %s: %w", p.Field, p.From, err)
		}
		byID := make(map[primitive.ObjectID]bson.M, len(docs))
		for _, doc := range docs {
			if id, ok := doc["_id"].(primitive.ObjectID); ok {
				byID[id] = doc
			}
		}

		for _, raw := range raws {
			switch v := raw[p.Field].(type) {
			case primitive.ObjectID:
				if doc, ok := byID[v]; ok {
					raw[p.Field] = doc
				} else {
					raw[p.Field] = nil
				}
			case primitive.A:
				resolved := make(primitive.A, 0, len(v))
				for _, el := range v {
					if id, ok := el.(primitive.ObjectID); ok {
						if doc, ok := byID[id]; ok {
							resolved = append(resolved, doc)
						}
					}
				}
				raw[p.Field] = resolved
			}
		}
	}
	return nil
}

func translateErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

func decodeDoc(raw bson.M, out any) error {
	data, err := bson.Marshal(raw)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, out)
}

// decodeSlice re-decodes resolved documents into out, which must be a
// pointer to a slice of structs.
func decodeSlice(raws []bson.M, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: Find out argument must be a pointer to a slice, got %T", out)
	}
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	for _, raw := range raws {
		elem := reflect.New(elemType)
		if err := decodeDoc(raw, elem.Interface()); err != nil {
			return err
		}
		slice = reflect.Append(slice, elem.Elem())
	}
	rv.Elem().Set(slice)
	return nil
}
