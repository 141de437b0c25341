package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/database"
	"storefront/internal/models"
)

type MongoProducts struct {
	collection
}

func NewMongoProducts(db *mongo.Database, timeout time.Duration) *MongoProducts {
	return &MongoProducts{collection: newCollection(db, database.ProductsCollection, timeout)}
}

func activeFilter() bson.M {
	return bson.M{"isArchived": bson.M{"$ne": true}}
}

func (f ProductFilter) bson() bson.M {
	filter := bson.M{}
	if !f.IncludeArchived {
		filter = activeFilter()
	}
	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}
	}
	return filter
}

func (s *MongoProducts) List(ctx context.Context, filter ProductFilter, skip, limit int64) ([]models.Product, int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := filter.bson()
	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.coll.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, err := findAll[models.Product](ctx, cursor)
	if err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

func (s *MongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var product models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return models.Product{}, mapNoDocuments(err)
	}
	return product, nil
}

func (s *MongoProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	products, err := findAll[models.Product](ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *MongoProducts) Top(ctx context.Context, limit int64) ([]models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	findOptions := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.coll.Find(ctx, activeFilter(), findOptions)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return findAll[models.Product](ctx, cursor)
}

func (s *MongoProducts) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	values, err := s.coll.Distinct(ctx, "category", activeFilter())
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok && strings.TrimSpace(name) != "" {
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *MongoProducts) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	product.ID = primitive.NilObjectID
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}

	res, err := s.coll.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	product.ID = insertedID(res)
	return nil
}

func (s *MongoProducts) Update(ctx context.Context, product *models.Product) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	product.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": product.ID}, bson.M{"$set": bson.M{
		"name":         product.Name,
		"price":        product.Price,
		"image":        product.Image,
		"brand":        product.Brand,
		"category":     product.Category,
		"description":  product.Description,
		"countInStock": product.CountInStock,
		"updatedAt":    product.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) Archive(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isArchived": true,
		"archivedAt": at,
		"updatedAt":  at,
	}})
	if err != nil {
		return fmt.Errorf("archive product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddReview is a single pipeline update guarded on the reviewer being absent.
func (s *MongoProducts) AddReview(ctx context.Context, id primitive.ObjectID, review models.Review) (models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id, "reviews.user": bson.M{"$ne": review.UserID}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
				bson.A{bson.M{"$literal": review}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"numReviews": bson.M{"$size": "$reviews"},
			"rating":     bson.M{"$avg": "$reviews.rating"},
			"updatedAt":  review.CreatedAt,
		}}},
	}

	var updated models.Product
	err := s.coll.FindOneAndUpdate(ctx, filter, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == nil {
		return updated, nil
	}
	if mapNoDocuments(err) != ErrNotFound {
		return models.Product{}, fmt.Errorf("add review: %w", err)
	}

	if _, findErr := s.FindByID(ctx, id); findErr != nil {
		return models.Product{}, findErr
	}
	return models.Product{}, ErrDuplicate
}
