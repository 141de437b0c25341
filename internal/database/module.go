package database

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"storefront/internal/config"
)

// Module provides the Mongo handle and disconnects it on shutdown.
var Module = fx.Options(
	fx.Provide(newDatabase),
	fx.Provide(func(d *Database) Pinger { return d }),
)

func newDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Database, error) {
	d, err := Open(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("disconnecting mongodb")
			return d.Client.Disconnect(ctx)
		},
	})
	return d, nil
}
