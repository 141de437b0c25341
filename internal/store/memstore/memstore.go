// Package memstore keeps accounts, orders and products in process memory.
// It mirrors the Mongo stores closely enough to back service and router tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

// Store implements every store interface over maps guarded by one mutex.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	accounts map[primitive.ObjectID]models.Account
	orders   map[primitive.ObjectID]models.Order
	products map[primitive.ObjectID]models.Product

	lastAccount, lastOrder, lastProduct time.Time
}

func New() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		accounts: make(map[primitive.ObjectID]models.Account),
		orders:   make(map[primitive.ObjectID]models.Order),
		products: make(map[primitive.ObjectID]models.Product),
	}
}

// Accounts, Orders and Products expose the typed views.
func (s *Store) Accounts() store.AccountStore { return accountView{s} }
func (s *Store) Orders() store.OrderStore     { return orderView{s} }
func (s *Store) Products() store.ProductStore { return productView{s} }

// stamp returns a strictly increasing timestamp so ordering by createdAt is stable.
func (s *Store) stamp(last *time.Time) time.Time {
	t := s.now()
	if !t.After(*last) {
		t = last.Add(time.Millisecond)
	}
	*last = t
	return t
}

type accountView struct{ *Store }

func (v accountView) Create(_ context.Context, account *models.Account) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, existing := range v.accounts {
		if existing.Email == account.Email {
			return store.ErrDuplicate
		}
	}
	now := v.stamp(&v.lastAccount)
	account.ID = primitive.NewObjectID()
	account.CreatedAt = now
	account.UpdatedAt = now
	v.accounts[account.ID] = copyAccount(*account)
	return nil
}

func (v accountView) FindByID(_ context.Context, id primitive.ObjectID) (models.Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	a, ok := v.accounts[id]
	if !ok {
		return models.Account{}, store.ErrNotFound
	}
	return copyAccount(a), nil
}

func (v accountView) FindByEmail(_ context.Context, email string) (models.Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, a := range v.accounts {
		if a.Email == email {
			return copyAccount(a), nil
		}
	}
	return models.Account{}, store.ErrNotFound
}

func (v accountView) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make(map[primitive.ObjectID]models.Account, len(ids))
	for _, id := range ids {
		if a, ok := v.accounts[id]; ok {
			out[id] = copyAccount(a)
		}
	}
	return out, nil
}

func (v accountView) List(_ context.Context) ([]models.Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]models.Account, 0, len(v.accounts))
	for _, a := range v.accounts {
		out = append(out, copyAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (v accountView) Update(_ context.Context, account *models.Account) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	current, ok := v.accounts[account.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, existing := range v.accounts {
		if id != account.ID && existing.Email == account.Email {
			return store.ErrDuplicate
		}
	}
	current.Name = account.Name
	current.Email = account.Email
	current.PasswordHash = account.PasswordHash
	current.IsAdmin = account.IsAdmin
	if account.ShippingAddress != nil {
		addr := *account.ShippingAddress
		current.ShippingAddress = &addr
	}
	current.UpdatedAt = v.now()
	account.UpdatedAt = current.UpdatedAt
	v.accounts[account.ID] = current
	return nil
}

func (v accountView) Delete(_ context.Context, id primitive.ObjectID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.accounts[id]; !ok {
		return store.ErrNotFound
	}
	delete(v.accounts, id)
	return nil
}

type orderView struct{ *Store }

func (v orderView) Create(_ context.Context, order *models.Order) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.stamp(&v.lastOrder)
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now
	v.orders[order.ID] = copyOrder(*order)
	return nil
}

func (v orderView) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	o, ok := v.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return copyOrder(o), nil
}

func (v orderView) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return v.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (v orderView) ListAll(_ context.Context) ([]models.Order, error) {
	return v.list(func(models.Order) bool { return true }), nil
}

func (v orderView) list(keep func(models.Order) bool) []models.Order {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]models.Order, 0)
	for _, o := range v.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (v orderView) MarkPaid(_ context.Context, id primitive.ObjectID, at time.Time, result models.PaymentResult) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	o, ok := v.orders[id]
	if !ok || o.IsPaid {
		return false, nil
	}
	o.IsPaid = true
	o.PaidAt = &at
	o.PaymentResult = &result
	o.UpdatedAt = at
	v.orders[id] = o
	return true, nil
}

func (v orderView) MarkDelivered(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	o, ok := v.orders[id]
	if !ok || !o.IsPaid || o.IsDelivered {
		return false, nil
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	o.UpdatedAt = at
	v.orders[id] = o
	return true, nil
}

func (v orderView) Delete(_ context.Context, id primitive.ObjectID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(v.orders, id)
	return nil
}

type productView struct{ *Store }

func matches(p models.Product, filter store.ProductFilter) bool {
	if p.IsArchived && !filter.IncludeArchived {
		return false
	}
	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))
	return keyword == "" || strings.Contains(strings.ToLower(p.Name), keyword)
}

func (v productView) List(_ context.Context, filter store.ProductFilter, skip, limit int64) ([]models.Product, int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	all := make([]models.Product, 0)
	for _, p := range v.products {
		if matches(p, filter) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if skip >= total {
		return []models.Product{}, total, nil
	}
	end := total
	if limit > 0 && skip+limit < total {
		end = skip + limit
	}
	page := make([]models.Product, 0, end-skip)
	for _, p := range all[skip:end] {
		page = append(page, copyProduct(p))
	}
	return page, total, nil
}

func (v productView) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return copyProduct(p), nil
}

func (v productView) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := v.products[id]; ok {
			out[id] = copyProduct(p)
		}
	}
	return out, nil
}

func (v productView) Top(_ context.Context, limit int64) ([]models.Product, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	all := make([]models.Product, 0)
	for _, p := range v.products {
		if !p.IsArchived {
			all = append(all, copyProduct(p))
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Rating != all[j].Rating {
			return all[i].Rating > all[j].Rating
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if limit > 0 && int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (v productView) Categories(_ context.Context) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range v.products {
		if p.IsArchived || strings.TrimSpace(p.Category) == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (v productView) Create(_ context.Context, product *models.Product) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.stamp(&v.lastProduct)
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	v.products[product.ID] = copyProduct(*product)
	return nil
}

func (v productView) Update(_ context.Context, product *models.Product) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	current, ok := v.products[product.ID]
	if !ok {
		return store.ErrNotFound
	}
	current.Name = product.Name
	current.Price = product.Price
	current.Image = product.Image
	current.Brand = product.Brand
	current.Category = product.Category
	current.Description = product.Description
	current.CountInStock = product.CountInStock
	current.UpdatedAt = v.now()
	product.UpdatedAt = current.UpdatedAt
	v.products[product.ID] = current
	return nil
}

func (v productView) Archive(_ context.Context, id primitive.ObjectID, at time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.IsArchived = true
	p.ArchivedAt = &at
	p.UpdatedAt = at
	v.products[id] = p
	return nil
}

func (v productView) AddReview(_ context.Context, id primitive.ObjectID, review models.Review) (models.Product, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	if p.ReviewedBy(review.UserID) {
		return models.Product{}, store.ErrDuplicate
	}
	p.Reviews = append(append([]models.Review{}, p.Reviews...), review)
	p.NumReviews = len(p.Reviews)
	p.Rating = models.AverageRating(p.Reviews)
	p.UpdatedAt = review.CreatedAt
	v.products[id] = p
	return copyProduct(p), nil
}

// Seed inserts a product as-is, keeping its ID when set. Tests use it to
// stand up a catalog without going through the admin flow.
func (s *Store) Seed(product models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = s.stamp(&s.lastProduct)
		product.UpdatedAt = product.CreatedAt
	}
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	s.products[product.ID] = copyProduct(product)
	return copyProduct(product)
}

func copyAccount(a models.Account) models.Account {
	if a.ShippingAddress != nil {
		addr := *a.ShippingAddress
		a.ShippingAddress = &addr
	}
	return a
}

func copyOrder(o models.Order) models.Order {
	o.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		o.PaymentResult = &pr
	}
	o.Owner = nil
	return o
}

func copyProduct(p models.Product) models.Product {
	p.Reviews = append([]models.Review{}, p.Reviews...)
	return p
}
