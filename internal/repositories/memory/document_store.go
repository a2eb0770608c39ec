// Package memory keeps documents in process memory. It backs tests and the
// "memory" database driver used for local development.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/clubtoros/toros-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.DocumentStore = (*DocumentStore)(nil)

// DocumentStore holds BSON documents per collection in insertion order.
// Documents go through a BSON round trip on every read and write, so callers
// never share memory with the store.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string][]bson.D
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string][]bson.D)}
}

// Find decodes every document matching predicates into out, which must be a
// pointer to a slice.
func (s *DocumentStore) Find(_ context.Context, collection string, predicates []repositories.Predicate, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find in %s: out must be a pointer to a slice, got %T", collection, out)
	}

	s.mu.RLock()
	var matches [][]byte
	for _, doc := range s.collections[collection] {
		if !matchesAll(doc, predicates) {
			continue
		}
		raw, err := bson.Marshal(doc)
		if err != nil {
			s.mu.RUnlock()
			return fmt.Errorf("find in %s: %w", collection, err)
		}
		matches = append(matches, raw)
	}
	s.mu.RUnlock()

	sliceType := rv.Elem().Type()
	elemType := sliceType.Elem()
	result := reflect.MakeSlice(sliceType, 0, len(matches))
	for _, raw := range matches {
		target := elemType
		if elemType.Kind() == reflect.Ptr {
			target = elemType.Elem()
		}
		item := reflect.New(target)
		if err := bson.Unmarshal(raw, item.Interface()); err != nil {
			return fmt.Errorf("decode %s: %w", collection, err)
		}
		if elemType.Kind() == reflect.Ptr {
			result = reflect.Append(result, item)
		} else {
			result = reflect.Append(result, item.Elem())
		}
	}
	rv.Elem().Set(result)
	return nil
}

// Insert stores doc, assigning an ObjectID when it carries no _id.
func (s *DocumentStore) Insert(_ context.Context, collection string, doc any) (string, error) {
	d, err := toD(doc)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}

	id, ok := lookup(d, "_id")
	if !ok || id == nil {
		oid := primitive.NewObjectID()
		d = append(bson.D{{Key: "_id", Value: oid}}, removeKey(d, "_id")...)
		id = oid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], d)
	return idString(id), nil
}

// Get decodes the document with id into out.
func (s *DocumentStore) Get(_ context.Context, collection, id string, out any) error {
	s.mu.RLock()
	idx := s.indexOf(collection, id)
	if idx < 0 {
		s.mu.RUnlock()
		return repositories.ErrNotFound
	}
	raw, err := bson.Marshal(s.collections[collection][idx])
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return bson.Unmarshal(raw, out)
}

// Update sets fields on the document with id, adding the ones it lacks.
func (s *DocumentStore) Update(_ context.Context, collection, id string, fields repositories.Fields) error {
	patch, err := toD(map[string]any(fields))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(collection, id)
	if idx < 0 {
		return repositories.ErrNotFound
	}
	doc := s.collections[collection][idx]
	for _, e := range patch {
		doc = set(doc, e.Key, e.Value)
	}
	s.collections[collection][idx] = doc
	return nil
}

// Count returns the number of documents in collection.
func (s *DocumentStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *DocumentStore) indexOf(collection, id string) int {
	for i, doc := range s.collections[collection] {
		if v, ok := lookup(doc, "_id"); ok && idString(v) == id {
			return i
		}
	}
	return -1
}

func toD(doc any) (bson.D, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func lookup(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func set(d bson.D, key string, value any) bson.D {
	for i, e := range d {
		if e.Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: value})
}

func removeKey(d bson.D, key string) bson.D {
	out := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

func idString(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}

func matchesAll(doc bson.D, predicates []repositories.Predicate) bool {
	for _, p := range predicates {
		value, _ := lookup(doc, p.Field)
		if !matches(value, p) {
			return false
		}
	}
	return true
}

func matches(value any, p repositories.Predicate) bool {
	got := normalize(value)
	if p.Op != repositories.OpIn {
		return reflect.DeepEqual(got, normalize(p.Value))
	}
	candidates := reflect.ValueOf(p.Value)
	if candidates.Kind() != reflect.Slice && candidates.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < candidates.Len(); i++ {
		if reflect.DeepEqual(got, normalize(candidates.Index(i).Interface())) {
			return true
		}
	}
	return false
}

// normalize folds named string types and numeric widths so that values read
// back from BSON compare equal to the Go values used in predicates.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	}
	return v
}
