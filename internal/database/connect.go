package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"storefront/internal/config"
)

// Collection names.
const (
	UsersCollection    = "users"
	OrdersCollection   = "orders"
	ProductsCollection = "products"
)

const pingTimeout = 2 * time.Second

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Pinger reports database reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Database wraps the client and the storefront database handle.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func (d *Database) Ping(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return d.Client.Ping(checkCtx, readpref.Primary())
}

// Open connects, selects the configured database and bootstraps indexes.
// Index failures are logged and do not prevent startup.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Database, error) {
	client, err := Connect(ctx, cfg.MongoURI, cfg.DBTimeout)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.DBName)
	log.Info("mongodb connected", zap.String("database", db.Name()))

	if err := EnsureIndexes(ctx, db, log); err != nil {
		log.Warn("index bootstrap incomplete", zap.Error(err))
	}
	return &Database{Client: client, DB: db}, nil
}
