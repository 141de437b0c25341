package store

import (
	"go.uber.org/fx"

	"storefront/internal/config"
	"storefront/internal/database"
)

// Module binds the Mongo implementations to the store interfaces.
var Module = fx.Provide(
	func(d *database.Database, cfg *config.Config) AccountStore {
		return NewMongoAccounts(d.DB, cfg.DBTimeout)
	},
	func(d *database.Database, cfg *config.Config) OrderStore {
		return NewMongoOrders(d.DB, cfg.DBTimeout)
	},
	func(d *database.Database, cfg *config.Config) ProductStore {
		return NewMongoProducts(d.DB, cfg.DBTimeout)
	},
)
