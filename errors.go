package goCred

import (
	"errors"

	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store"
)

var (
	// ErrPasswordTooLong is returned when a password exceeds the engine's input bound.
	ErrPasswordTooLong = password.ErrPasswordTooLong
	// ErrEngineUnavailable is returned when a record names an engine that is not registered.
	ErrEngineUnavailable = password.ErrUnknownEngine
	// ErrRecordNotFound is returned when no record exists for a username.
	ErrRecordNotFound = store.ErrNotFound
	// ErrInvalidRecord is returned for an empty, oversized or multi-line username or email,
	// or a restored record with a malformed salt or hash.
	ErrInvalidRecord = errors.New("invalid credential record")
	// ErrRecordExists is returned by Register when the username is taken.
	ErrRecordExists = errors.New("credential record already exists")
	// ErrInvalidCredentials is returned when the username or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited is returned when the failed-attempt budget for a username is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrTokensDisabled is returned by Login and ParseToken when JWT issuance is not configured.
	ErrTokensDisabled = errors.New("token issuance disabled")
	// ErrTokenInvalid is returned when an access token fails verification.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrPasswordReuse is returned by ChangePassword when the new password equals the old one.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrEngineNotReady is returned when a Service method is called on a nil or closed service.
	ErrEngineNotReady = errors.New("service not initialized")
)
