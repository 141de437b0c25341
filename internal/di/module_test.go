package di

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/store"
	"storefront/internal/store/memstore"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Port:            "0",
		AppEnv:          config.EnvDevelopment,
		MongoURI:        "mongodb://stub",
		JWTSecret:       "secret",
		BcryptCost:      4,
		PageSize:        10,
		ShutdownTimeout: time.Second,
	}
	mem := memstore.New()

	var (
		server *http.Server
		router *gin.Engine
	)
	app := fx.New(
		Module(
			fx.Replace(cfg),
			fx.Replace(zap.NewNop()),
			fx.Decorate(
				func() store.AccountStore { return mem.Accounts() },
				func() store.OrderStore { return mem.Orders() },
				func() store.ProductStore { return mem.Products() },
				func() database.Pinger { return stubPinger{} },
			),
		),
		fx.NopLogger,
		fx.Populate(&server, &router),
	)
	require.NoError(t, app.Err())

	require.NotNil(t, server)
	assert.Equal(t, ":0", server.Addr)
	assert.Same(t, router, server.Handler)

	routes := map[string]bool{}
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/users/login",
		"GET /api/products/:id",
		"PUT /api/orders/:id/pay",
		"GET /api/health",
	} {
		assert.True(t, routes[want], want)
	}
}
