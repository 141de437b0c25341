package orders

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/store"
)

var Module = fx.Provide(func(
	orders store.OrderStore,
	products *catalog.Service,
	accounts store.AccountStore,
	cfg *config.Config,
	log *zap.Logger,
) *Service {
	pricing := Pricing{
		FlatRate:      cfg.ShippingFlatRate,
		FreeThreshold: cfg.FreeShippingThreshold,
		TaxRate:       cfg.TaxRate,
	}
	return NewService(orders, products, accounts, pricing, log)
})
