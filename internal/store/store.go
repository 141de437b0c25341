// Package store persists accounts, orders and products.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type AccountStore interface {
	// Create assigns ID and timestamps. ErrDuplicate on a taken email.
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	// Update writes name, email, password, isAdmin and shippingAddress.
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	// ListByUser returns the owner's orders oldest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// MarkPaid applies only while the order is unpaid and reports whether it did.
	MarkPaid(ctx context.Context, id primitive.ObjectID, at time.Time, result models.PaymentResult) (bool, error)
	// MarkDelivered applies only to a paid, undelivered order and reports whether it did.
	MarkDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Keyword         string
	IncludeArchived bool
}

type ProductStore interface {
	// List returns one page, newest first, and the total match count.
	List(ctx context.Context, filter ProductFilter, skip, limit int64) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	Top(ctx context.Context, limit int64) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes the editable catalog fields.
	Update(ctx context.Context, product *models.Product) error
	Archive(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// AddReview appends a review and recomputes rating and numReviews.
	// ErrDuplicate when the reviewer already reviewed the product.
	AddReview(ctx context.Context, id primitive.ObjectID, review models.Review) (models.Product, error)
}
