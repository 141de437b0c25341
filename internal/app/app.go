package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"storefront/internal/accounts"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/orders"
)

// Module wires the router, the HTTP server and its lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newRouter,
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

type routerParams struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Accounts *accounts.Service
	Catalog  *catalog.Service
	Orders   *orders.Service
	Database database.Pinger
}

func newRouter(p routerParams) *gin.Engine {
	return handlers.NewRouter(handlers.Services{
		Accounts: p.Accounts,
		Catalog:  p.Catalog,
		Orders:   p.Orders,
		Database: p.Database,
	}, handlers.RouterOptions{
		Production:     p.Config.Production(),
		UploadDir:      p.Config.UploadDir,
		StaticDir:      p.Config.StaticDir,
		PayPalClientID: p.Config.PayPalClientID,
	}, p.Logger)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.Addr(),
		Handler: p.Router,
	}
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *zap.Logger
	Server     *http.Server
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting storefront",
				zap.String("addr", p.Server.Addr),
				zap.String("env", p.Config.AppEnv),
			)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", zap.Error(err))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("storefront stopped")
			return nil
		},
	})
}
