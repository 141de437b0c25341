// Package orders implements order placement and the paid/delivered lifecycle.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
)

// ProductCatalog resolves the products an order references.
type ProductCatalog interface {
	Lookup(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
}

// OwnerDirectory resolves order owners for the read-time summary.
type OwnerDirectory interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Account, error)
}

type ItemInput struct {
	ProductID string
	Quantity  int
}

type CreateInput struct {
	Items           []ItemInput
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	Totals          SuppliedTotals
}

// PaymentConfirmation is the provider record passed through verbatim.
type PaymentConfirmation struct {
	ID         string
	Status     string
	UpdateTime string
	PayerEmail string
}

type Service struct {
	orders  store.OrderStore
	catalog ProductCatalog
	owners  OwnerDirectory
	pricing Pricing
	log     *zap.Logger
	now     func() time.Time
}

func NewService(orders store.OrderStore, catalog ProductCatalog, owners OwnerDirectory, pricing Pricing, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		orders:  orders,
		catalog: catalog,
		owners:  owners,
		pricing: pricing,
		log:     log.Named("orders"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	return oid, err == nil
}

// Create prices the order from the catalog and persists it unpaid.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, apperr.ErrEmptyOrder
	}

	fields := map[string]any{}
	ids := make([]primitive.ObjectID, 0, len(in.Items))
	for i, item := range in.Items {
		if item.Quantity < 1 {
			fields[fmt.Sprintf("orderItems[%d].quantity", i)] = "quantity must be at least 1"
		}
		oid, ok := parseID(item.ProductID)
		if !ok {
			fields[fmt.Sprintf("orderItems[%d].product", i)] = "product is invalid"
			continue
		}
		ids = append(ids, oid)
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		fields["paymentMethod"] = "paymentMethod is required"
	}
	if !in.ShippingAddress.Complete() {
		fields["shippingAddress"] = "address, city, postalCode and country are required"
	}
	if len(fields) > 0 {
		return models.Order{}, apperr.Validation("Invalid order").WithDetails(fields)
	}

	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return models.Order{}, err
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for i, item := range in.Items {
		product, ok := products[ids[i]]
		if !ok || product.IsArchived {
			return models.Order{}, apperr.New(apperr.KindValidation, apperr.CodeProductNotFound, "Product not found").
				WithDetails(map[string]any{"product": item.ProductID})
		}
		if item.Quantity > product.CountInStock {
			return models.Order{}, apperr.New(apperr.KindValidation, apperr.CodeOutOfStock, "Not enough stock for "+product.Name).
				WithDetails(map[string]any{
					"product":   item.ProductID,
					"requested": item.Quantity,
					"available": product.CountInStock,
				})
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}

	totals := s.pricing.Compute(items)
	if err := totals.Reconcile(in.Totals); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		UserID:          actor.AccountID,
		OrderItems:      items,
		ShippingAddress: trimAddress(in.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		ItemsPrice:      totals.ItemsPrice,
		ShippingPrice:   totals.ShippingPrice,
		TaxPrice:        totals.TaxPrice,
		TotalPrice:      totals.TotalPrice,
	}
	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created",
		zap.String("orderId", order.ID.Hex()),
		zap.String("accountId", actor.AccountID.Hex()),
		zap.Stringer("totalPrice", order.TotalPrice),
	)
	return order, nil
}

func trimAddress(a models.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{}.Merge(a)
}

func (s *Service) load(ctx context.Context, id string) (models.Order, error) {
	oid, ok := parseID(id)
	if !ok {
		return models.Order{}, apperr.ErrOrderNotFound
	}
	order, err := s.orders.FindByID(ctx, oid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.Order{}, apperr.ErrOrderNotFound
	case err != nil:
		return models.Order{}, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

// loadAccessible loads an order the actor owns, or any order for an admin.
func (s *Service) loadAccessible(ctx context.Context, actor auth.Actor, id string) (models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !actor.CanAccess(order.UserID) {
		return models.Order{}, apperr.ErrForbidden
	}
	return order, nil
}

// Get returns the order with its owner's name and email.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (models.Order, error) {
	order, err := s.loadAccessible(ctx, actor, id)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.attachOwners(ctx, []*models.Order{&order}, true); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *Service) ListMine(ctx context.Context, actor auth.Actor) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, actor.AccountID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range orders {
		orders[i].Owner = &models.OrderOwner{ID: orders[i].UserID}
	}
	return orders, nil
}

// ListAll returns every order with the owner's id and name.
func (s *Service) ListAll(ctx context.Context, actor auth.Actor) ([]models.Order, error) {
	if !actor.IsAdmin {
		return nil, apperr.ErrNotAdmin
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	refs := make([]*models.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := s.attachOwners(ctx, refs, false); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) attachOwners(ctx context.Context, orders []*models.Order, withEmail bool) error {
	seen := make(map[primitive.ObjectID]struct{}, len(orders))
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; !ok {
			seen[o.UserID] = struct{}{}
			ids = append(ids, o.UserID)
		}
	}
	accounts, err := s.owners.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve order owners: %w", err)
	}
	for _, o := range orders {
		owner := &models.OrderOwner{ID: o.UserID}
		if account, ok := accounts[o.UserID]; ok {
			owner.Name = account.Name
			if withEmail {
				owner.Email = account.Email
			}
		}
		o.Owner = owner
	}
	return nil
}

// MarkPaid moves an order from created to paid. Repeating it is a no-op that
// keeps the first confirmation.
func (s *Service) MarkPaid(ctx context.Context, actor auth.Actor, id string, confirmation PaymentConfirmation) (models.Order, error) {
	order, err := s.loadAccessible(ctx, actor, id)
	if err != nil {
		return models.Order{}, err
	}
	if order.IsPaid {
		return order, nil
	}

	result := models.PaymentResult{
		ID:           confirmation.ID,
		Status:       confirmation.Status,
		UpdateTime:   confirmation.UpdateTime,
		EmailAddress: confirmation.PayerEmail,
	}
	applied, err := s.orders.MarkPaid(ctx, order.ID, s.now(), result)
	if err != nil {
		return models.Order{}, fmt.Errorf("mark paid: %w", err)
	}
	if applied {
		s.log.Info("order paid", zap.String("orderId", order.ID.Hex()), zap.String("paymentId", result.ID))
	}
	return s.load(ctx, id)
}

// MarkDelivered moves a paid order to delivered. An unpaid order is rejected;
// a delivered one is returned unchanged.
func (s *Service) MarkDelivered(ctx context.Context, actor auth.Actor, id string) (models.Order, error) {
	if !actor.IsAdmin {
		return models.Order{}, apperr.ErrNotAdmin
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if order.IsDelivered {
		return order, nil
	}
	if !order.IsPaid {
		return models.Order{}, apperr.ErrOrderNotPaid
	}

	applied, err := s.orders.MarkDelivered(ctx, order.ID, s.now())
	if err != nil {
		return models.Order{}, fmt.Errorf("mark delivered: %w", err)
	}
	if applied {
		s.log.Info("order delivered", zap.String("orderId", order.ID.Hex()))
	}
	return s.load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if !actor.IsAdmin {
		return apperr.ErrNotAdmin
	}
	oid, ok := parseID(id)
	if !ok {
		return apperr.ErrOrderNotFound
	}
	err := s.orders.Delete(ctx, oid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.ErrOrderNotFound
	case err != nil:
		return fmt.Errorf("delete order: %w", err)
	}
	s.log.Info("order deleted", zap.String("orderId", id), zap.String("adminId", actor.AccountID.Hex()))
	return nil
}
