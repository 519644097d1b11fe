package goCred

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goCred/password"
)

// Config holds the settings consumed by [Builder.Build].
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Engine   EngineConfig
	Security SecurityConfig
	JWT      JWTConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Store    StoreConfig
}

/*
====================================
ENGINE CONFIG
====================================
*/

// EngineConfig selects the digest engine for new passwords.
type EngineConfig struct {
	Default password.Kind
	// UpgradeOnLogin rehashes records under Default after a successful Authenticate.
	UpgradeOnLogin bool
	Argon2         password.Argon2Config
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls failed-login throttling. Throttling needs a Redis client.
type SecurityConfig struct {
	EnableLoginThrottle   bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
	RedisPrefix           string
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig enables access token issuance from [Service.Login].
type JWTConfig struct {
	Enabled       bool
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process counters and the digest latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// StoreConfig tunes the store operations issued by [Service].
type StoreConfig struct {
	// OperationTimeout bounds each Save/Load/Delete. Zero leaves the caller's context as is.
	OperationTimeout time.Duration
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			Default: password.KindKeyedTransposition,
			Argon2:  password.DefaultArgon2Config(),
		},
		Security: SecurityConfig{
			EnableLoginThrottle:   false,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
			RedisPrefix:           "gc",
		},
		JWT: JWTConfig{
			AccessTTL:     5 * time.Minute,
			SigningMethod: "ed25519",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Store: StoreConfig{
			OperationTimeout: 5 * time.Second,
		},
	}
}

// DefaultConfig returns the configuration used when [Builder.WithConfig] is not called.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// Engine
	switch c.Engine.Default {
	case password.KindKeyedTransposition, password.KindArgon2id:
	default:
		return errors.New("Engine Default is not a known engine")
	}
	if err := password.ValidateArgon2Config(c.Engine.Argon2); err != nil {
		return err
	}

	// Security
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("Security MaxLoginAttempts must be > 0")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("Security LoginCooldownDuration must be > 0")
		}
	}
	if strings.TrimSpace(c.Security.RedisPrefix) == "" {
		return errors.New("Security RedisPrefix must not be empty")
	}

	// JWT
	if c.JWT.Enabled {
		if c.JWT.AccessTTL <= 0 {
			return errors.New("JWT AccessTTL must be > 0")
		}
		switch c.JWT.SigningMethod {
		case "ed25519":
			if len(c.JWT.PrivateKey) == 0 {
				return errors.New("ed25519 requires PrivateKey")
			}
			if len(c.JWT.PublicKey) == 0 {
				return errors.New("ed25519 requires PublicKey")
			}
		case "hs256":
			if len(c.JWT.PrivateKey) == 0 {
				return errors.New("hs256 requires PrivateKey")
			}
		default:
			return errors.New("unsupported JWT signing method")
		}
		if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
			return errors.New("JWT Leeway must be between 0 and 2m")
		}
		if c.JWT.Audience != "" && strings.TrimSpace(c.JWT.Audience) == "" {
			return errors.New("JWT Audience must not be blank")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}

	// Store
	if c.Store.OperationTimeout < 0 {
		return errors.New("Store OperationTimeout must be >= 0")
	}

	return nil
}
