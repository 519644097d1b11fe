package test

import (
	"context"
	"fmt"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates service construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	cfg := goCred.DefaultConfig()
	cfg.Security.EnableLoginThrottle = true

	svc, _ := goCred.New().
		WithConfig(cfg).
		WithStore(store.NewRedisStore(rdb, "gc")).
		WithRedis(rdb).
		Build()
	_ = svc
}

// ExampleService_Authenticate shows a typical login entrypoint call and structured error handling.
func ExampleService_Authenticate() {
	var svc *goCred.Service
	_, err := svc.Authenticate(context.Background(), "alice", "password")
	if err != nil {
		_ = err
	}
}

// ExampleCredentialRecord_SetPassword shows the record lifecycle without a store.
func ExampleCredentialRecord_SetPassword() {
	rec, _ := goCred.NewCredentialRecord("alice", "alice@example.com", password.KindKeyedTransposition)
	_ = rec.SetPassword("hunter2")

	ok, _ := rec.Validate("hunter2")
	bad, _ := rec.Validate("hunter3")
	fmt.Println(len(rec.Salt()), ok, bad)
	// Output: 6 true false
}

// ExampleDigest shows the pure keyed transposition digest.
func Example_digest() {
	hash, _ := password.Digest("hunter2", "abcdef")
	_ = hash
}
