package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionKV = "kv_store"

// Medium stores each key as one document {_id: key, value: string}.
type Medium struct {
	col *mongo.Collection
}

func NewMedium(db *mongo.Database) *Medium {
	return &Medium{col: db.Collection(collectionKV)}
}

type kvDoc struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

func (m *Medium) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc kvDoc
	err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongo get %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (m *Medium) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := m.col.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo set %s: %w", key, err)
	}
	return nil
}

func (m *Medium) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := m.col.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Ping reports whether the database answers.
func (m *Medium) Ping(ctx context.Context) error {
	return m.col.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
