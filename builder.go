package goCred

import (
	"errors"

	"github.com/MrEthical07/goCred/internal/rate"
	"github.com/MrEthical07/goCred/jwt"
	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Service].
//
// A Builder is single-use: Build fails on the second call.
type Builder struct {
	config Config
	store  store.Store
	redis  redis.UniversalClient

	auditSink AuditSink
	salts     SaltGenerator

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. cfg is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the record store. It is required.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithRedis sets the client used by the login throttle.
//
// WithRedis is required when Security.EnableLoginThrottle is set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the sink receiving audit events when Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithSaltGenerator replaces [CryptoSaltGenerator].
func (b *Builder) WithSaltGenerator(g SaltGenerator) *Builder {
	b.salts = g
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready service.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	if cfg.Security.EnableLoginThrottle && b.redis == nil {
		return nil, errors.New("Security EnableLoginThrottle requires redis client")
	}

	// -------- ENGINES --------
	argon, err := password.NewArgon2(cfg.Engine.Argon2)
	if err != nil {
		return nil, err
	}
	engines, err := password.NewRegistry(password.KeyedTransposition{}, argon)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		config:  cfg,
		store:   b.store,
		engines: engines,
		salts:   b.salts,
	}
	if svc.salts == nil {
		svc.salts = CryptoSaltGenerator{}
	}

	// -------- THROTTLE --------
	if cfg.Security.EnableLoginThrottle {
		svc.limiter = rate.New(b.redis, rate.Config{
			Prefix:      cfg.Security.RedisPrefix,
			MaxAttempts: cfg.Security.MaxLoginAttempts,
			Cooldown:    cfg.Security.LoginCooldownDuration,
		})
	}

	// -------- TOKENS --------
	if cfg.JWT.Enabled {
		jm, err := jwt.NewManager(jwt.Config{
			AccessTTL:     cfg.JWT.AccessTTL,
			SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
			PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
			PublicKey:     cloneBytes(cfg.JWT.PublicKey),
			Issuer:        cfg.JWT.Issuer,
			Audience:      cfg.JWT.Audience,
			Leeway:        cfg.JWT.Leeway,
		})
		if err != nil {
			return nil, err
		}
		svc.tokens = jm
	}

	svc.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	svc.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return svc, nil
}
