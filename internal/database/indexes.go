package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const indexTimeout = 5 * time.Second

// EnsureIndexes creates every index the stores rely on. It attempts all of
// them and joins the failures.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return errors.Join(
		EnsureUserIndexes(ctx, db, log),
		EnsureOrderIndexes(ctx, db, log),
		EnsureProductIndexes(ctx, db, log),
	)
}

func EnsureUserIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}
	return createIndexes(ctx, db.Collection(UsersCollection), log, emailIndex)
}

func EnsureOrderIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	ownerIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("user_createdAt"),
	}
	return createIndexes(ctx, db.Collection(OrdersCollection), log, ownerIndex)
}

func EnsureProductIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	listingIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "isArchived", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("isArchived_createdAt"),
	}
	ratingIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "isArchived", Value: 1}, {Key: "rating", Value: -1}},
		Options: options.Index().SetName("isArchived_rating"),
	}
	return createIndexes(ctx, db.Collection(ProductsCollection), log, listingIndex, ratingIndex)
}

func createIndexes(ctx context.Context, coll *mongo.Collection, log *zap.Logger, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Error("index creation failed", zap.String("collection", coll.Name()), zap.Error(err))
		return fmt.Errorf("create %s indexes: %w", coll.Name(), err)
	}
	log.Info("indexes ensured", zap.String("collection", coll.Name()), zap.Strings("indexes", names))
	return nil
}
