package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/port"
)

// Open connects the persisted storage selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, log logrus.FieldLogger) (port.KeyValueStore, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryAdapter(), nil

	case "badger":
		return OpenBadger(BadgerConfig{Path: cfg.Path, Logger: log})

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 10,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("connected to redis")
		return NewRedisAdapter(rdb), nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		adapter := NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("connected to mysql")
		return adapter, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
