package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubtoros/toros-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure DocumentStore implements the interface
var _ repositories.DocumentStore = (*DocumentStore)(nil)

// DocumentStore handles MongoDB operations for every collection
type DocumentStore struct {
	db *mongo.Database
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *mongo.Database) *DocumentStore {
	return &DocumentStore{db: db}
}

// Find decodes all documents matching predicates into out
func (s *DocumentStore) Find(ctx context.Context, collection string, predicates []repositories.Predicate, out any) error {
	cursor, err := s.db.Collection(collection).Find(ctx, filterFor(predicates))
	if err != nil {
		return fmt.Errorf("find in %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

// Insert adds doc and returns its generated id
func (s *DocumentStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return fmt.Sprint(id), nil
	}
}

// Get decodes the document with id into out
func (s *DocumentStore) Get(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update sets fields on the document with id
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields repositories.Fields) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func filterFor(predicates []repositories.Predicate) bson.D {
	filter := bson.D{}
	for _, p := range predicates {
		switch p.Op {
		case repositories.OpIn:
			filter = append(filter, bson.E{Key: p.Field, Value: bson.M{"$in": p.Value}})
		default:
			filter = append(filter, bson.E{Key: p.Field, Value: p.Value})
		}
	}
	return filter
}

// idFilter matches ObjectID ids given as hex, and plain string ids otherwise.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}
