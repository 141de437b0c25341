package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultTimeout = 5 * time.Second

// collection bounds every call with a per-operation timeout derived from the
// caller's context.
type collection struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func newCollection(db *mongo.Database, name string, timeout time.Duration) collection {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return collection{coll: db.Collection(name), timeout: timeout}
}

func (c collection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func findAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)

	out := make([]T, 0)
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func mapNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func mapDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id
}
