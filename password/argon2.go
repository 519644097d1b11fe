package password

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minKeyLength   uint32 = 16

	// MaxArgon2PasswordBytes bounds the password accepted by the Argon2 engine.
	MaxArgon2PasswordBytes = 1024
)

// Argon2Config holds the Argon2id cost parameters.
//
// Argon2Config instances are intended to be configured during initialization and then treated as immutable.
type Argon2Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultArgon2Config returns the parameters used by [DefaultRegistry].
func DefaultArgon2Config() Argon2Config {
	return Argon2Config{
		Memory:      65536,
		Time:        3,
		Parallelism: 2,
		KeyLength:   32,
	}
}

// Argon2 derives digests with Argon2id, using the record salt as the KDF salt.
type Argon2 struct {
	config Argon2Config
}

// NewArgon2 validates cfg and returns an engine.
func NewArgon2(cfg Argon2Config) (*Argon2, error) {
	if err := ValidateArgon2Config(cfg); err != nil {
		return nil, err
	}

	return &Argon2{config: cfg}, nil
}

// Kind implements [Engine].
func (a *Argon2) Kind() Kind { return KindArgon2id }

// Config returns the engine parameters.
func (a *Argon2) Config() Argon2Config { return a.config }

// Encrypt implements [Engine]. The digest is the uppercase hex encoding of the
// derived key. Password processing uses raw string bytes (no Unicode normalization).
func (a *Argon2) Encrypt(password string, target Target) error {
	if len(password) > MaxArgon2PasswordBytes {
		return ErrPasswordTooLong
	}

	key := argon2.IDKey(
		[]byte(password),
		[]byte(target.Salt()),
		a.config.Time,
		a.config.Memory,
		a.config.Parallelism,
		a.config.KeyLength,
	)

	target.SetHash(strings.ToUpper(hex.EncodeToString(key)))
	return nil
}

// ValidateArgon2Config reports the first parameter below its minimum.
func ValidateArgon2Config(cfg Argon2Config) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("argon2 memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return errors.New("argon2 time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("argon2 parallelism must be >= 1")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("argon2 key length must be >= 16")
	}

	return nil
}
