package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/accounts"
	"storefront/internal/catalog"
	"storefront/internal/middleware"
	"storefront/internal/orders"
)

// Services are the application services the routes call into.
type Services struct {
	Accounts *accounts.Service
	Catalog  *catalog.Service
	Orders   *orders.Service
	Database Pinger
}

type RouterOptions struct {
	Production     bool
	UploadDir      string
	StaticDir      string
	PayPalClientID string
}

func NewRouter(s Services, opts RouterOptions, log *zap.Logger) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = maxImageSize + 1<<20
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.ErrorHandler(opts.Production),
		middleware.Recovery(log),
	)

	protect := middleware.Protect(s.Accounts)
	admin := middleware.AdminOnly()

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("", RegisterUser(s.Accounts))
		users.POST("/login", Login(s.Accounts))
		users.GET("/profile", protect, GetProfile(s.Accounts))
		users.PUT("/profile", protect, UpdateProfile(s.Accounts))
		users.PUT("/shipping", protect, UpdateShippingAddress(s.Accounts))
		users.GET("", protect, admin, ListUsers(s.Accounts))
		users.GET("/:id", protect, admin, GetUser(s.Accounts))
		users.PUT("/:id", protect, admin, UpdateUser(s.Accounts))
		users.DELETE("/:id", protect, admin, DeleteUser(s.Accounts))
	}

	products := api.Group("/products")
	{
		products.GET("", ListProducts(s.Catalog))
		products.GET("/top", TopProducts(s.Catalog))
		products.GET("/categories", ProductCategories(s.Catalog))
		products.GET("/all", protect, admin, ListAllProducts(s.Catalog))
		products.GET("/:id", GetProduct(s.Catalog))
		products.POST("", protect, admin, CreateProduct(s.Catalog))
		products.PUT("/:id", protect, admin, UpdateProduct(s.Catalog))
		products.DELETE("/:id", protect, admin, ArchiveProduct(s.Catalog))
		products.POST("/:id/reviews", protect, CreateReview(s.Catalog))
	}

	orderRoutes := api.Group("/orders", protect)
	{
		orderRoutes.POST("", CreateOrder(s.Orders))
		orderRoutes.GET("/myorders", MyOrders(s.Orders))
		orderRoutes.GET("", admin, ListOrders(s.Orders))
		orderRoutes.GET("/:id", GetOrder(s.Orders))
		orderRoutes.PUT("/:id/pay", PayOrder(s.Orders))
		orderRoutes.PUT("/:id/deliver", admin, DeliverOrder(s.Orders))
		orderRoutes.DELETE("/:id", admin, DeleteOrder(s.Orders))
	}

	api.POST("/upload", protect, admin, UploadImage(NewImageStore(opts.UploadDir)))
	api.GET("/config/paypal", PayPalConfig(opts.PayPalClientID))
	if s.Database != nil {
		api.GET("/health", Health(s.Database))
	}

	if opts.UploadDir != "" {
		r.Static(UploadsRoute, opts.UploadDir)
	}

	if opts.Production && opts.StaticDir != "" {
		r.NoRoute(clientApp(opts.StaticDir))
	} else {
		r.NoRoute(middleware.NotFound())
	}
	return r
}

// clientApp serves the built client for non-API paths, falling back to
// index.html so client-side routes resolve.
func clientApp(dir string) gin.HandlerFunc {
	notFound := middleware.NotFound()
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			notFound(c)
			return
		}

		candidate := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}
