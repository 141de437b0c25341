// Package catalog serves product browsing and administration.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
)

const (
	DefaultPageSize = 10
	topLimit        = 3
)

// Page is one slice of a product listing.
type Page struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ProductUpdate carries administrator edits. Nil fields keep the current value.
type ProductUpdate struct {
	Name         *string
	Price        *models.Money
	Image        *string
	Brand        *string
	Category     *string
	Description  *string
	CountInStock *int
}

type ReviewInput struct {
	Rating  int
	Comment string
}

type Service struct {
	products store.ProductStore
	pageSize int
	policy   *bluemonday.Policy
	log      *zap.Logger
	now      func() time.Time
}

func NewService(products store.ProductStore, pageSize int, log *zap.Logger) *Service {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		products: products,
		pageSize: pageSize,
		policy:   bluemonday.StrictPolicy(),
		log:      log.Named("catalog"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	return oid, err == nil
}

func (s *Service) List(ctx context.Context, keyword string, page int) (Page, error) {
	return s.list(ctx, store.ProductFilter{Keyword: keyword}, page)
}

// ListAll is the administrator listing, archived products included.
func (s *Service) ListAll(ctx context.Context, actor auth.Actor, keyword string, page int) (Page, error) {
	if !actor.IsAdmin {
		return Page{}, apperr.ErrNotAdmin
	}
	return s.list(ctx, store.ProductFilter{Keyword: keyword, IncludeArchived: true}, page)
}

func (s *Service) list(ctx context.Context, filter store.ProductFilter, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	size := int64(s.pageSize)
	products, total, err := s.products.List(ctx, filter, size*int64(page-1), size)
	if err != nil {
		return Page{}, fmt.Errorf("list products: %w", err)
	}
	return Page{
		Products: products,
		Page:     page,
		Pages:    int((total + size - 1) / size),
	}, nil
}

// Get returns a product by id, archived or not.
func (s *Service) Get(ctx context.Context, id string) (models.Product, error) {
	oid, ok := parseID(id)
	if !ok {
		return models.Product{}, apperr.ErrProductNotFound
	}
	product, err := s.products.FindByID(ctx, oid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.Product{}, apperr.ErrProductNotFound
	case err != nil:
		return models.Product{}, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

// Lookup returns the products with the given ids, keyed by id. Missing ids
// are absent from the map.
func (s *Service) Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	return products, nil
}

func (s *Service) Top(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.Top(ctx, topLimit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return products, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Create inserts a placeholder product that the administrator edits next.
func (s *Service) Create(ctx context.Context, actor auth.Actor) (models.Product, error) {
	if !actor.IsAdmin {
		return models.Product{}, apperr.ErrNotAdmin
	}
	product := models.Product{
		UserID:       actor.AccountID,
		Name:         "Product name",
		Image:        "/images/sample.png",
		Brand:        "Product brand",
		Category:     "Product category",
		Description:  "Product Description",
		Price:        models.MoneyFromFloat(0),
		CountInStock: 0,
		Reviews:      []models.Review{},
	}
	if err := s.products.Create(ctx, &product); err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("product created", zap.String("productId", product.ID.Hex()), zap.String("adminId", actor.AccountID.Hex()))
	return product, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, in ProductUpdate) (models.Product, error) {
	if !actor.IsAdmin {
		return models.Product{}, apperr.ErrNotAdmin
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	fields := map[string]any{}
	if in.Price != nil && in.Price.IsNegative() {
		fields["price"] = "price must not be negative"
	}
	if in.CountInStock != nil && *in.CountInStock < 0 {
		fields["countInStock"] = "countInStock must not be negative"
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		fields["name"] = "name must not be blank"
	}
	if len(fields) > 0 {
		return models.Product{}, apperr.Validation("Invalid product fields").WithDetails(fields)
	}

	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	apply(&product.Name, in.Name)
	apply(&product.Image, in.Image)
	apply(&product.Brand, in.Brand)
	apply(&product.Category, in.Category)
	apply(&product.Description, in.Description)
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.CountInStock != nil {
		product.CountInStock = *in.CountInStock
	}

	err = s.products.Update(ctx, &product)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.Product{}, apperr.ErrProductNotFound
	case err != nil:
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// Archive hides a product from listings. It stays readable by id.
func (s *Service) Archive(ctx context.Context, actor auth.Actor, id string) error {
	if !actor.IsAdmin {
		return apperr.ErrNotAdmin
	}
	oid, ok := parseID(id)
	if !ok {
		return apperr.ErrProductNotFound
	}
	err := s.products.Archive(ctx, oid, s.now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.ErrProductNotFound
	case err != nil:
		return fmt.Errorf("archive product: %w", err)
	}
	s.log.Info("product archived", zap.String("productId", id), zap.String("adminId", actor.AccountID.Hex()))
	return nil
}

func (s *Service) AddReview(ctx context.Context, actor auth.Actor, id string, in ReviewInput) (models.Product, error) {
	comment := strings.TrimSpace(s.policy.Sanitize(in.Comment))
	fields := map[string]any{}
	if in.Rating < 1 || in.Rating > 5 {
		fields["rating"] = "rating must be between 1 and 5"
	}
	if comment == "" {
		fields["comment"] = "comment is required"
	}
	if len(fields) > 0 {
		return models.Product{}, apperr.Validation("Invalid review").WithDetails(fields)
	}

	oid, ok := parseID(id)
	if !ok {
		return models.Product{}, apperr.ErrProductNotFound
	}

	review := models.Review{
		ID:        primitive.NewObjectID(),
		UserID:    actor.AccountID,
		Name:      actor.Name,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	product, err := s.products.AddReview(ctx, oid, review)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.Product{}, apperr.ErrProductNotFound
	case errors.Is(err, store.ErrDuplicate):
		return models.Product{}, apperr.ErrAlreadyReviewed
	case err != nil:
		return models.Product{}, fmt.Errorf("add review: %w", err)
	}
	s.log.Info("review added", zap.String("productId", id), zap.Int("rating", in.Rating))
	return product, nil
}
