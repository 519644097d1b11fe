package test

import (
	"context"
	"net/http"
	"testing"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/jwt"
	"github.com/MrEthical07/goCred/middleware"
	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goCred.New
	_ = goCred.NewCredentialRecord
	_ = goCred.RestoreCredentialRecord

	var _ *goCred.Service
	var _ *goCred.CredentialRecord
	var _ goCred.Config
	var _ goCred.AuditSink
	var _ goCred.SaltGenerator = goCred.CryptoSaltGenerator{}
	var _ password.Engine = password.KeyedTransposition{}
	var _ password.Engine = (*password.Argon2)(nil)
	var _ store.Store = (*store.FileStore)(nil)
	var _ store.Store = (*store.RedisStore)(nil)
	var _ store.Store = (*store.SQLiteStore)(nil)
	var _ middleware.Service = (*goCred.Service)(nil)

	var _ error = goCred.ErrPasswordTooLong
	var _ error = goCred.ErrEngineUnavailable
	var _ error = goCred.ErrRecordNotFound
	var _ error = goCred.ErrInvalidCredentials
	var _ error = goCred.ErrLoginRateLimited
	var _ error = goCred.ErrTokenInvalid

	var _ func(middleware.TokenParser) func(http.Handler) http.Handler = middleware.Guard
	var _ func(middleware.Service) func(http.Handler) http.Handler = middleware.RequireRecord

	var _ func(*goCred.CredentialRecord, string) error = (*goCred.CredentialRecord).SetPassword
	var _ func(*goCred.CredentialRecord, string) (bool, error) = (*goCred.CredentialRecord).Validate
	var _ func(*goCred.Service, context.Context, string, string, string) (*goCred.CredentialRecord, error) = (*goCred.Service).Register
	var _ func(*goCred.Service, context.Context, string, string) (*goCred.CredentialRecord, error) = (*goCred.Service).Authenticate
	var _ func(*goCred.Service, context.Context, string, string) (string, error) = (*goCred.Service).Login
	var _ func(*goCred.Service, string) (*jwt.AccessClaims, error) = (*goCred.Service).ParseToken
	var _ func(string, string) (string, error) = password.Digest
}
