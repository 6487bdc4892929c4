package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/digitaldudes/ottcart/internal/config"
	"github.com/digitaldudes/ottcart/internal/storage"
	"github.com/redis/go-redis/v9"
)

// openSlotStore connects the configured cart storage backend. The returned
// close func releases its connections.
func openSlotStore(ctx context.Context, cfg config.Storage, log *slog.Logger) (storage.SlotStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory cart storage, carts are lost on restart")
		return storage.NewMemoryStore(), noop, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis ping succeeded", slog.String("addr", cfg.RedisAddr))
		return storage.NewRedisStore(client, cfg.RedisTTL), client.Close, nil

	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		store := storage.NewMongoStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			log.Warn("failed to create mongo indexes", slog.Any("err", err))
		}
		log.Info("connected to MongoDB", slog.String("db", cfg.MongoDBName))
		return store, func() error { return db.Client().Disconnect(context.Background()) }, nil

	case config.BackendSQLite:
		store, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		log.Info("opened sqlite cart storage", slog.String("path", cfg.SQLitePath))
		return store, store.Close, nil

	case config.BackendPostgres:
		store, err := storage.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		log.Info("connected to postgres cart storage")
		return store, store.Close, nil

	case config.BackendBolt:
		store, err := storage.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, noop, err
		}
		log.Info("opened bolt cart storage", slog.String("path", cfg.BoltPath))
		return store, store.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
