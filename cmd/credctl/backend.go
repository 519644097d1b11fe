package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/goCred/store"
	"github.com/redis/go-redis/v9"
)

// openStore returns the configured backend and a function releasing it.
func openStore(ctx context.Context, opts options) (store.Store, func() error, error) {
	switch opts.Backend {
	case "file":
		fs, err := store.NewFileStore(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("file store opened", "path", opts.Path)
		return fs, func() error { return nil }, nil

	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{opts.RedisAddr},
		})
		rs := store.NewRedisStore(client, opts.Prefix)
		if err := rs.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		slog.Debug("redis store connected", "addr", opts.RedisAddr, "prefix", opts.Prefix)
		return rs, client.Close, nil

	case "sqlite":
		db, err := store.OpenDB(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := store.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.Debug("sqlite store opened", "path", opts.Path)
		return store.NewSQLiteStore(db), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown backend %q", opts.Backend)
}
