// Package db opens the SQL identity store and applies its schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"account_backend/internal/feature/account/adapters"
	"account_backend/internal/platform/db/migrations"
)

// Supported SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	defaultConnectTimeout = 60 * time.Second
	retryInterval         = 3 * time.Second
	defaultSQLitePath     = "account.db"
)

// Config holds the SQL store settings.
type Config struct {
	Driver         string
	DatabaseURL    string
	SQLitePath     string
	RunMigrations  bool
	ConnectTimeout time.Duration
}

// OpenDB opens the store selected by cfg.Driver, retrying until the connect timeout elapses.
// Migrations run afterwards when cfg.RunMigrations is set.
func OpenDB(ctx context.Context, cfg Config) (*gorm.DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	var (
		dsn    string
		opener func(string) (*gorm.DB, error)
	)
	switch cfg.Driver {
	case DriverPostgres:
		dsn, opener = cfg.DatabaseURL, openPostgres
	case DriverSQLite:
		dsn, opener = cfg.SQLitePath, openSQLite
		if dsn == "" {
			dsn = defaultSQLitePath
		}
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := ConnectWithRetry(dsn, timeout, opener)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := Migrate(ctx, db, cfg.Driver); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

// Migrate applies the schema.
// PostgreSQL uses the embedded goose migrations; SQLite uses GORM AutoMigrate.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	if driver != DriverPostgres {
		if err := db.WithContext(ctx).AutoMigrate(&adapters.UserModel{}); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		if err := adapters.RefreshSearchColumns(ctx, db); err != nil {
			return fmt.Errorf("failed to fill search columns: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func gormConfig() *gorm.Config {
	// TranslateError lets adapters detect unique violations as gorm.ErrDuplicatedKey.
	return &gorm.Config{TranslateError: true}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; a single connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
