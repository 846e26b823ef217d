// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"account_backend/internal/app/config"
	"account_backend/internal/feature/account/adapters"
	"account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/cache"
	"account_backend/internal/platform/db"
	jwtmw "account_backend/internal/platform/jwt"
	platformmongo "account_backend/internal/platform/mongo"
)

// Store is an opened identity store together with its lifecycle hooks.
type Store struct {
	Users usecase.UserRepository
	// Ping reports whether the backing database is reachable.
	Ping func(ctx context.Context) error
	// Close releases the connection pool.
	Close func() error
}

// OpenStore connects to the store selected by cfg.Driver.
// MongoDB is the default; postgres and sqlite go through GORM.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return openMongoStore(ctx, cfg)
	case config.DriverPostgres, config.DriverSQLite:
		return openSQLStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openMongoStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	client, database, err := platformmongo.Connect(ctx, platformmongo.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
	})
	if err != nil {
		return nil, err
	}

	users := adapters.NewUserMongo(database)
	if cfg.RunMigrations {
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
	}

	return &Store{
		Users: users,
		Ping: func(ctx context.Context) error {
			return platformmongo.Ping(ctx, client)
		},
		Close: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		},
	}, nil
}

func openSQLStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	gdb, err := db.OpenDB(ctx, db.Config{
		Driver:        cfg.Driver,
		DatabaseURL:   cfg.DatabaseURL,
		SQLitePath:    cfg.SQLitePath,
		RunMigrations: cfg.RunMigrations,
	})
	if err != nil {
		return nil, err
	}
	return newSQLStore(gdb)
}

func newSQLStore(gdb *gorm.DB) (*Store, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &Store{
		Users: adapters.NewUserSQL(gdb),
		Ping: func(ctx context.Context) error {
			return db.Ping(ctx, gdb)
		},
		Close: sqlDB.Close,
	}, nil
}

// NewUserRepository wraps users with the Redis cache when Redis is available.
// It returns the repository for the usecase and the finder for the request authenticator.
// Without Redis both are users itself.
func NewUserRepository(rdb *redis.Client, ttl time.Duration, users usecase.UserRepository) (usecase.UserRepository, jwtmw.UserFinder) {
	if rdb == nil {
		return users, users
	}
	cached := cache.NewCachingUserRepository(rdb, ttl, users, "users")
	return cached, cached.Identities()
}
