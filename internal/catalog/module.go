package catalog

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/store"
)

var Module = fx.Provide(func(products store.ProductStore, cfg *config.Config, log *zap.Logger) *Service {
	return NewService(products, cfg.PageSize, log)
})
