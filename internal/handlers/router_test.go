package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/accounts"
	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/orders"
	"storefront/internal/store/memstore"
)

type testServer struct {
	router     *gin.Engine
	mem        *memstore.Store
	camera     models.Product
	adminToken string
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, opts RouterOptions) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := memstore.New()
	hasher := auth.NewBcryptHasher(4)
	accountSvc, err := accounts.NewService(mem.Accounts(), hasher, auth.NewJWTSigner("test-secret", 0), nil)
	require.NoError(t, err)
	catalogSvc := catalog.NewService(mem.Products(), 10, nil)
	orderSvc := orders.NewService(mem.Orders(), catalogSvc, mem.Accounts(), orders.DefaultPricing(), nil)

	hash, err := hasher.Hash("admin-pass")
	require.NoError(t, err)
	admin := models.Account{Name: "Ada", Email: "ada@x.com", PasswordHash: hash, IsAdmin: true}
	require.NoError(t, mem.Accounts().Create(context.Background(), &admin))

	camera := mem.Seed(models.Product{
		Name:         "Camera",
		Image:        "/images/camera.jpg",
		Brand:        "Canon",
		Category:     "Electronics",
		Price:        models.MoneyFromFloat(10),
		CountInStock: 5,
	})

	router := NewRouter(Services{
		Accounts: accountSvc,
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Database: stubPinger{},
	}, opts, zap.NewNop())

	s := testServer{router: router, mem: mem, camera: camera}
	s.adminToken = s.login(t, "ada@x.com", "admin-pass")
	return s
}

func (s testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/users/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	return session.Token
}

func (s testServer) register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	w := s.do(http.MethodPost, "/api/users", "", gin.H{"name": name, "email": email, "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session struct {
		ID    string `json:"_id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	return session.ID, session.Token
}

func (s testServer) orderBody(qty int) gin.H {
	return gin.H{
		"orderItems":      []gin.H{{"product": s.camera.ID.Hex(), "quantity": qty}},
		"shippingAddress": gin.H{"address": "1 Main St", "city": "Leeds", "postalCode": "LS1", "country": "UK"},
		"paymentMethod":   "PayPal",
	}
}

func (s testServer) placeOrder(t *testing.T, token string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/orders", token, s.orderBody(1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	return order.ID
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorBody {
	t.Helper()
	var body middleware.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRegisterThenLogin(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	id, token := s.register(t, "Alice", "a@x.com")
	assert.NotEmpty(t, token)

	w := s.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "a@x.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	var session struct {
		ID      string `json:"_id"`
		IsAdmin bool   `json:"isAdmin"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, id, session.ID)
	assert.False(t, session.IsAdmin)

	w = s.do(http.MethodGet, "/api/users/profile", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"a@x.com"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	s.register(t, "Alice", "a@x.com")

	w := s.do(http.MethodPost, "/api/users", "", gin.H{"name": "Al", "email": "a@x.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.CodeEmailInUse, errorBody(t, w).Code)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	s.register(t, "Alice", "a@x.com")

	wrong := s.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "a@x.com", "password": "nope"})
	unknown := s.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "b@x.com", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, errorBody(t, wrong).Message, errorBody(t, unknown).Message)
}

func TestLoginRequiresFields(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	w := s.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := errorBody(t, w)
	assert.Equal(t, apperr.CodeValidation, body.Code)
	assert.Equal(t, "password is required", body.Details["password"])
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, token := s.register(t, "Alice", "a@x.com")

	body := s.orderBody(1)
	body["orderItems"] = []gin.H{}
	w := s.do(http.MethodPost, "/api/orders", token, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeEmptyOrder, errorBody(t, w).Code)

	all, err := s.mem.Orders().ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateOrderComputesTotals(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, token := s.register(t, "Alice", "a@x.com")

	body := s.orderBody(2)
	body["itemsPrice"] = 20
	body["shippingPrice"] = 4.99
	body["taxPrice"] = 0
	body["totalPrice"] = 24.99
	w := s.do(http.MethodPost, "/api/orders", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Contains(t, w.Body.String(), `"itemsPrice":20.00`)
	assert.Contains(t, w.Body.String(), `"shippingPrice":4.99`)
	assert.Contains(t, w.Body.String(), `"totalPrice":24.99`)
	assert.Contains(t, w.Body.String(), `"isPaid":false`)
}

func TestCreateOrderRejectsForgedTotals(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, token := s.register(t, "Alice", "a@x.com")

	body := s.orderBody(2)
	body["totalPrice"] = 1
	w := s.do(http.MethodPost, "/api/orders", token, body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := errorBody(t, w)
	assert.Equal(t, apperr.CodePriceMismatch, errBody.Code)
	assert.Equal(t, "totalPrice", errBody.Details["field"])
}

func TestCreateOrderAcceptsQtyAlias(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, token := s.register(t, "Alice", "a@x.com")

	body := s.orderBody(0)
	body["orderItems"] = []gin.H{{"product": s.camera.ID.Hex(), "qty": 3}}
	w := s.do(http.MethodPost, "/api/orders", token, body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"quantity":3`)
	assert.Contains(t, w.Body.String(), `"itemsPrice":30.00`)
}

func TestCreateOrderRequiresToken(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	w := s.do(http.MethodPost, "/api/orders", "", s.orderBody(1))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorised - no token", errorBody(t, w).Message)
}

func TestPayUnknownOrder(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, token := s.register(t, "Alice", "a@x.com")

	w := s.do(http.MethodPut, "/api/orders/"+primitive.NewObjectID().Hex()+"/pay", token, gin.H{"id": "PAY-1", "status": "COMPLETED"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperr.CodeNotFound, errorBody(t, w).Code)
}

func TestPayThenDeliver(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, token := s.register(t, "Alice", "a@x.com")
	orderID := s.placeOrder(t, token)

	w := s.do(http.MethodPut, "/api/orders/"+orderID+"/deliver", s.adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.CodeOrderNotPaid, errorBody(t, w).Code)

	payment := gin.H{
		"id":          "PAY-1",
		"status":      "COMPLETED",
		"update_time": "2024-01-01T00:00:00Z",
		"payer":       gin.H{"email_address": "a@x.com"},
	}
	w = s.do(http.MethodPut, "/api/orders/"+orderID+"/pay", token, payment)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paid))
	require.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentResult)
	assert.Equal(t, "a@x.com", paid.PaymentResult.EmailAddress)

	w = s.do(http.MethodPut, "/api/orders/"+orderID+"/pay", token, gin.H{"id": "PAY-2"})
	require.Equal(t, http.StatusOK, w.Code)
	var again models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.True(t, paid.PaidAt.Equal(*again.PaidAt))
	assert.Equal(t, "PAY-1", again.PaymentResult.ID)

	w = s.do(http.MethodPut, "/api/orders/"+orderID+"/deliver", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/orders/"+orderID+"/deliver", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isDelivered":true`)
}

func TestOrderAccessIsOwnerOrAdmin(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, alice := s.register(t, "Alice", "a@x.com")
	_, bob := s.register(t, "Bob", "b@x.com")
	orderID := s.placeOrder(t, alice)

	w := s.do(http.MethodGet, "/api/orders/"+orderID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/orders/"+orderID+"/pay", bob, gin.H{"id": "PAY-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/orders/"+orderID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"a@x.com"`)

	w = s.do(http.MethodGet, "/api/orders/"+orderID, s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAllOrdersIsAdminOnly(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, alice := s.register(t, "Alice", "a@x.com")
	_, bob := s.register(t, "Bob", "b@x.com")
	s.placeOrder(t, alice)
	s.placeOrder(t, bob)

	w := s.do(http.MethodGet, "/api/orders", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperr.CodeForbidden, errorBody(t, w).Code)

	w = s.do(http.MethodGet, "/api/orders", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = s.do(http.MethodGet, "/api/orders/myorders", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, alice := s.register(t, "Alice", "a@x.com")

	w := s.do(http.MethodPost, "/api/products", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/products", s.adminToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Product name", created.Name)

	w = s.do(http.MethodPut, "/api/products/"+created.ID.Hex(), s.adminToken, gin.H{"name": "Lens", "price": "129.50", "countInStock": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":129.50`)

	w = s.do(http.MethodGet, "/api/products?keyword=lens", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Products []models.Product `json:"products"`
		Page     int              `json:"page"`
		Pages    int              `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Pages)

	w = s.do(http.MethodDelete, "/api/products/"+created.ID.Hex(), s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Product archived")

	w = s.do(http.MethodGet, "/api/products?keyword=lens", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Empty(t, page.Products)

	w = s.do(http.MethodGet, "/api/products/all?keyword=lens", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Products, 1)
}

func TestReviewOncePerAccount(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, alice := s.register(t, "Alice", "a@x.com")
	path := "/api/products/" + s.camera.ID.Hex() + "/reviews"

	w := s.do(http.MethodPost, path, alice, gin.H{"rating": 4, "comment": "<b>Sharp</b> pictures"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"numReviews":1`)

	w = s.do(http.MethodPost, path, alice, gin.H{"rating": 1, "comment": "again"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.CodeAlreadyReviewed, errorBody(t, w).Code)

	w = s.do(http.MethodGet, "/api/products/"+s.camera.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	require.Len(t, product.Reviews, 1)
	assert.Equal(t, "Sharp pictures", product.Reviews[0].Comment)
	assert.InDelta(t, 4, product.Rating, 1e-9)
}

func TestTopAndCategories(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	s.mem.Seed(models.Product{Name: "Phone", Category: "Electronics", Rating: 4.8})
	s.mem.Seed(models.Product{Name: "Mug", Category: "Kitchen", Rating: 3})

	w := s.do(http.MethodGet, "/api/products/top", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var top []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	require.Len(t, top, 3)
	assert.Equal(t, "Phone", top[0].Name)

	w = s.do(http.MethodGet, "/api/products/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Electronics","Kitchen"]`, w.Body.String())
}

func TestAdminManagesUsers(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	bobID, bob := s.register(t, "Bob", "b@x.com")

	w := s.do(http.MethodGet, "/api/users", bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/users/"+bobID, s.adminToken, gin.H{"isAdmin": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isAdmin":true`)

	w = s.do(http.MethodGet, "/api/users", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/api/users/"+bobID, s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User deleted successfully")

	w = s.do(http.MethodGet, "/api/users/profile", bob, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShippingAddressIsSaved(t *testing.T) {
	s := newTestServer(t, RouterOptions{})
	_, token := s.register(t, "Alice", "a@x.com")

	w := s.do(http.MethodPut, "/api/users/shipping", token, gin.H{"address": "1 Main St", "city": "Leeds", "postalCode": "LS1", "country": "UK"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"city":"Leeds"`)
}

func TestErrorStackHiddenInProduction(t *testing.T) {
	dev := newTestServer(t, RouterOptions{})
	w := dev.do(http.MethodGet, "/api/products/"+primitive.NewObjectID().Hex(), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.NotNil(t, errorBody(t, w).Stack)

	prod := newTestServer(t, RouterOptions{Production: true})
	gin.SetMode(gin.TestMode)
	w = prod.do(http.MethodGet, "/api/products/"+primitive.NewObjectID().Hex(), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, errorBody(t, w).Stack)
	assert.Contains(t, w.Body.String(), `"stack":null`)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, RouterOptions{})

	w := s.do(http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found - /api/nothing", errorBody(t, w).Message)
}

func TestPayPalConfigAndHealth(t *testing.T) {
	s := newTestServer(t, RouterOptions{PayPalClientID: "sb-client"})

	w := s.do(http.MethodGet, "/api/config/paypal", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sb-client", w.Body.String())

	w = s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, w.Body.String())
}

func TestHealthReportsDatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	r.GET("/health", Health(stubPinger{err: context.DeadlineExceeded}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"down"`)
}
