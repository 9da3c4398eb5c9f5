package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type settingDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps one document per setting, keyed by _id.
type MongoStore struct {
	coll *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore creates a store over coll.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc settingDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return doc.Value, true, nil
}

// SetMany upserts every value in one unordered bulk write.
func (s *MongoStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(values))
	for k, v := range values {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: k}}).
			SetUpdate(bson.D{{Key: "$set", Value: bson.D{
				{Key: "value", Value: v},
				{Key: "updated_at", Value: now},
			}}}).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

func (s *MongoStore) All(ctx context.Context) (map[string]string, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	var docs []settingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	out := make(map[string]string, len(docs))
	for _, d := range docs {
		out[d.Key] = d.Value
	}
	return out, nil
}
