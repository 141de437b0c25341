package di

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"storefront/internal/accounts"
	"storefront/internal/app"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/orders"
	"storefront/internal/store"
)

// Module composes the whole application graph. Extra options are appended,
// so callers can swap pieces with fx.Replace.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module,
		logger.Module,
		auth.Module,
		database.Module,
		store.Module,
		accounts.Module,
		catalog.Module,
		orders.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
