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

type MongoAccounts struct {
	collection
}

func NewMongoAccounts(db *mongo.Database, timeout time.Duration) *MongoAccounts {
	return &MongoAccounts{collection: newCollection(db, database.UsersCollection, timeout)}
}

func (s *MongoAccounts) Create(ctx context.Context, account *models.Account) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	account.ID = primitive.NilObjectID
	account.CreatedAt = now
	account.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, account)
	if err != nil {
		return fmt.Errorf("insert account: %w", mapDuplicate(err))
	}
	account.ID = insertedID(res)
	return nil
}

func (s *MongoAccounts) FindByID(ctx context.Context, id primitive.ObjectID) (models.Account, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoAccounts) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoAccounts) findOne(ctx context.Context, filter bson.M) (models.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var account models.Account
	if err := s.coll.FindOne(ctx, filter).Decode(&account); err != nil {
		return models.Account{}, mapNoDocuments(err)
	}
	return account, nil
}

func (s *MongoAccounts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Account, error) {
	out := make(map[primitive.ObjectID]models.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	accounts, err := findAll[models.Account](ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	for _, a := range accounts {
		out[a.ID] = a
	}
	return out, nil
}

func (s *MongoAccounts) List(ctx context.Context) ([]models.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return findAll[models.Account](ctx, cursor)
}

func (s *MongoAccounts) Update(ctx context.Context, account *models.Account) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	account.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":      account.Name,
		"email":     account.Email,
		"password":  account.PasswordHash,
		"isAdmin":   account.IsAdmin,
		"updatedAt": account.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if account.ShippingAddress != nil {
		set["shippingAddress"] = account.ShippingAddress
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": account.ID}, update)
	if err != nil {
		return fmt.Errorf("update account: %w", mapDuplicate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoAccounts) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
