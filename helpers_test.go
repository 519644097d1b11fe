package goCred

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	return mr, rdb
}

func newTestFileStore(t *testing.T) *store.FileStore {
	t.Helper()

	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "credentials.txt"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return fs
}

func serviceTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Engine.Argon2 = password.Argon2Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLength: 32}
	cfg.Metrics.Enabled = true
	cfg.Store.OperationTimeout = 0
	return cfg
}

func newTestService(t *testing.T, cfg Config, s store.Store) *Service {
	t.Helper()

	svc, err := New().WithConfig(cfg).WithStore(s).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

// failingStore wraps a store and fails Save once armed.
type failingStore struct {
	store.Store
	failSave bool
}

func (f *failingStore) Save(ctx context.Context, rec store.Record) error {
	if f.failSave {
		return store.ErrUnavailable
	}
	return f.Store.Save(ctx, rec)
}

// blockingStore never answers before ctx is done.
type blockingStore struct{}

func (blockingStore) Save(ctx context.Context, _ store.Record) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingStore) Load(ctx context.Context, _ string) (store.Record, error) {
	<-ctx.Done()
	return store.Record{}, ctx.Err()
}

func (blockingStore) Delete(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}
