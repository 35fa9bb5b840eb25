package mongostore

import (
	"context"
	"errors"
	"fmt"
	"go-blog-api/logger"
	"go-blog-api/repository"
	"time"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store implements repository.IStore on the collection named by the resource.
// Field names are the bson names, which match the SQL column names.
type Store[T any] struct {
	coll *mongo.Collection
	res  repository.Resource[T]
}

func NewStore[T any](db *mongo.Database, res repository.Resource[T]) *Store[T] {
	return &Store[T]{coll: db.Collection(res.Collection), res: res}
}

// EnsureIndexes indexes every filterable field.
func (s *Store[T]) EnsureIndexes(ctx context.Context) error {
	models := make([]mongo.IndexModel, 0, len(s.res.Filters))
	for field := range s.res.Filters {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}})
	}
	if len(models) == 0 {
		return nil
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create %s indexes: %w", s.res.Collection, err)
	}
	return nil
}

func (s *Store[T]) Create(ctx context.Context, item *T) error {
	if key := s.res.Key(item); *key == "" {
		*key = ulid.Make().String()
	}
	s.res.Stamp(item, time.Now().UTC(), true)

	if _, err := s.coll.InsertOne(ctx, item); err != nil {
		logger.Log.WithError(err).WithField("resource", s.res.Name).Error("Failed to insert document")
		return fmt.Errorf("create %s: %w", s.res.Name, err)
	}
	return nil
}

func (s *Store[T]) GetAll(ctx context.Context) ([]*T, error) {
	return s.find(ctx, bson.D{})
}

func (s *Store[T]) FindBy(ctx context.Context, field, value string) ([]*T, error) {
	if _, ok := s.res.Filters[field]; !ok {
		return nil, fmt.Errorf("%s cannot be filtered by %q", s.res.Name, field)
	}
	return s.find(ctx, bson.D{{Key: field, Value: value}})
}

func (s *Store[T]) find(ctx context.Context, filter bson.D) ([]*T, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		logger.Log.WithError(err).WithField("resource", s.res.Name).Error("Failed to query documents")
		return nil, fmt.Errorf("list %s: %w", s.res.Collection, err)
	}
	items := []*T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.res.Collection, err)
	}
	return items, nil
}

func (s *Store[T]) GetByID(ctx context.Context, id string) (*T, error) {
	item := new(T)
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", s.res.Name, err)
	}
	return item, nil
}

// Update sets the resource's mutable fields from item.
func (s *Store[T]) Update(ctx context.Context, item *T) error {
	s.res.Stamp(item, time.Now().UTC(), false)

	set, err := mutableFields(item, s.res.Mutable)
	if err != nil {
		return err
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: *s.res.Key(item)}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("resource", s.res.Name).Error("Failed to update document")
		return fmt.Errorf("update %s: %w", s.res.Name, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func mutableFields[T any](item *T, fields []string) (bson.D, error) {
	raw, err := bson.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	set := make(bson.D, 0, len(fields))
	for _, f := range fields {
		set = append(set, bson.E{Key: f, Value: doc[f]})
	}
	return set, nil
}

func (s *Store[T]) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.res.Name, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store[T]) DeleteBy(ctx context.Context, field, value string) (int64, error) {
	if _, ok := s.res.Filters[field]; !ok {
		return 0, fmt.Errorf("%s cannot be filtered by %q", s.res.Name, field)
	}
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: field, Value: value}})
	if err != nil {
		return 0, fmt.Errorf("delete %s by %s: %w", s.res.Collection, field, err)
	}
	return res.DeletedCount, nil
}
