package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/database"
	"storefront/internal/models"
)

type MongoOrders struct {
	collection
}

func NewMongoOrders(db *mongo.Database, timeout time.Duration) *MongoOrders {
	return &MongoOrders{collection: newCollection(db, database.OrdersCollection, timeout)}
}

func (s *MongoOrders) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	order.ID = primitive.NilObjectID
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	order.ID = insertedID(res)
	return nil
}

func (s *MongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var order models.Order
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return models.Order{}, mapNoDocuments(err)
	}
	return order, nil
}

func (s *MongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.list(ctx, bson.M{"user": userID})
}

func (s *MongoOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, bson.M{})
}

func (s *MongoOrders) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return findAll[models.Order](ctx, cursor)
}

func (s *MongoOrders) MarkPaid(ctx context.Context, id primitive.ObjectID, at time.Time, result models.PaymentResult) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isPaid": false},
		bson.M{"$set": bson.M{
			"isPaid":        true,
			"paidAt":        at,
			"paymentResult": result,
			"updatedAt":     at,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoOrders) MarkDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isPaid": true, "isDelivered": false},
		bson.M{"$set": bson.M{
			"isDelivered": true,
			"deliveredAt": at,
			"updatedAt":   at,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("mark order delivered: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
