// Package app assembles the importer's runtime dependencies from config.
// cmd/server and cmd/bee-import share it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/bee-importer/internal/beefree"
	"github.com/ignite/bee-importer/internal/config"
	"github.com/ignite/bee-importer/internal/pkg/distlock"
	"github.com/ignite/bee-importer/internal/pkg/logger"
	"github.com/ignite/bee-importer/internal/repository/postgres"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

// App is the wired importer.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Redis   *redis.Client
	Client  *beefree.Client
	Service *conversion.Service
}

// New connects to PostgreSQL and, when configured, Redis, then builds the
// Beefree client and conversion service. Without Redis there is no
// whole-import lock; the repository still serializes writers per template
// name with a transaction-scoped advisory lock.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	client, err := beefree.NewClient(cfg.Beefree, &http.Client{})
	if err != nil {
		return nil, fmt.Errorf("beefree client: %w", err)
	}

	if cfg.Database.URL == "" {
		return nil, errors.New("database url is required (DATABASE_URL)")
	}
	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: db, Client: client}
	a.Redis = openRedis(ctx, cfg.Redis)

	a.Service = conversion.NewService(client, postgres.NewTemplateRepo(db),
		conversion.ConfigFrom(cfg.Conversion),
		conversion.WithLocks(distlock.NewFactory(a.Redis, cfg.Redis.LockTTL())))
	return a, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL
	if !strings.Contains(dsn, "connect_timeout") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "connect_timeout=5"
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// openRedis returns nil when Redis is not configured or unreachable.
func openRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("redis not configured, import locks limited to the insert transaction")
		return nil
	}

	var client *redis.Client
	if opts, err := redis.ParseURL(cfg.Addr); err == nil {
		client = redis.NewClient(opts)
	} else {
		client = redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, import locks limited to the insert transaction", "addr", cfg.Addr, "error", err)
		client.Close()
		return nil
	}
	logger.Info("redis connected, import locks enabled", "addr", cfg.Addr)
	return client
}
