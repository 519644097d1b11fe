package goCred

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"

	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store"
)

var defaultEngines = sync.OnceValue(password.DefaultRegistry)

// CredentialRecord holds one user's identity fields, engine selection, salt and digest.
//
// A record is not safe for concurrent mutation. Callers serialize SetPassword,
// Rehash and Validate per record; [Service] does this with a per-username lock.
type CredentialRecord struct {
	username string
	email    string
	kind     password.Kind
	salt     string
	hash     string

	engines *password.Registry
	salts   SaltGenerator
}

// RecordOption customizes record construction.
type RecordOption func(*CredentialRecord)

// WithEngines selects the registry used to resolve the record's engine.
func WithEngines(r *password.Registry) RecordOption {
	return func(c *CredentialRecord) {
		if r != nil {
			c.engines = r
		}
	}
}

// WithSaltGenerator replaces the crypto/rand salt source.
func WithSaltGenerator(g SaltGenerator) RecordOption {
	return func(c *CredentialRecord) {
		if g != nil {
			c.salts = g
		}
	}
}

// NewCredentialRecord returns a record with an empty salt and hash.
//
// Username and email must fit every store: at most [store.MaxFieldLength] bytes
// and no line breaks.
func NewCredentialRecord(username, email string, kind password.Kind, opts ...RecordOption) (*CredentialRecord, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalidRecord)
	}
	if err := checkField("username", username); err != nil {
		return nil, err
	}
	if err := checkField("email", email); err != nil {
		return nil, err
	}

	c := newRecord(opts)
	if !c.engines.Has(kind) {
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, kind)
	}

	c.username = username
	c.email = email
	c.kind = kind
	return c, nil
}

// RestoreCredentialRecord rebuilds a record from its persisted form.
func RestoreCredentialRecord(rec store.Record, opts ...RecordOption) (*CredentialRecord, error) {
	if rec.Username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalidRecord)
	}

	kind, err := password.ParseKind(rec.Engine)
	if err != nil {
		return nil, err
	}

	c := newRecord(opts)
	if !c.engines.Has(kind) {
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, kind)
	}

	if rec.Hash != "" {
		if !validSalt(rec.Salt) {
			return nil, fmt.Errorf("%w: malformed salt for %q", ErrInvalidRecord, rec.Username)
		}
		if !isUpperHex(rec.Hash) {
			return nil, fmt.Errorf("%w: malformed hash for %q", ErrInvalidRecord, rec.Username)
		}
	} else if rec.Salt != "" && !validSalt(rec.Salt) {
		return nil, fmt.Errorf("%w: malformed salt for %q", ErrInvalidRecord, rec.Username)
	}

	c.username = rec.Username
	c.email = rec.Email
	c.kind = kind
	c.salt = rec.Salt
	c.hash = rec.Hash
	return c, nil
}

func checkField(name, value string) error {
	if len(value) > store.MaxFieldLength {
		return fmt.Errorf("%w: %s longer than %d bytes", ErrInvalidRecord, name, store.MaxFieldLength)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s contains a line break", ErrInvalidRecord, name)
	}
	return nil
}

func newRecord(opts []RecordOption) *CredentialRecord {
	c := &CredentialRecord{
		engines: defaultEngines(),
		salts:   CryptoSaltGenerator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Username returns the record's username.
func (c *CredentialRecord) Username() string { return c.username }

// Email returns the record's email.
func (c *CredentialRecord) Email() string { return c.email }

// Engine returns the engine that produced (or will produce) the hash.
func (c *CredentialRecord) Engine() password.Kind { return c.kind }

// Salt returns the current salt. It is empty before the first SetPassword.
func (c *CredentialRecord) Salt() string { return c.salt }

// Hash returns the current digest. It is empty before the first SetPassword.
func (c *CredentialRecord) Hash() string { return c.hash }

// HasPassword reports whether a password has been set.
func (c *CredentialRecord) HasPassword() bool { return c.hash != "" }

// SetPassword draws a fresh salt and stores the digest of pw under it.
//
// The record changes only on success: if salt generation or the engine fails,
// salt and hash keep their previous values.
func (c *CredentialRecord) SetPassword(pw string) error {
	return c.setPassword(pw, c.kind)
}

// Rehash switches the record to kind and sets pw under a fresh salt.
// The engine, salt and hash change together or not at all.
func (c *CredentialRecord) Rehash(pw string, kind password.Kind) error {
	return c.setPassword(pw, kind)
}

func (c *CredentialRecord) setPassword(pw string, kind password.Kind) error {
	engine, err := c.engines.Engine(kind)
	if err != nil {
		return err
	}

	salt, err := c.salts.Generate(SaltLength)
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	scratch := &digestTarget{salt: salt}
	if err := engine.Encrypt(pw, scratch); err != nil {
		return err
	}

	c.kind = kind
	c.salt = salt
	c.hash = scratch.hash
	return nil
}

// Validate reports whether candidate produces the stored hash under the stored salt.
//
// It never mutates the record. A record without a password validates nothing.
// A candidate that the engine rejects returns the engine's error.
func (c *CredentialRecord) Validate(candidate string) (bool, error) {
	if c.hash == "" {
		return false, nil
	}

	engine, err := c.engines.Engine(c.kind)
	if err != nil {
		return false, err
	}

	scratch := &digestTarget{salt: c.salt}
	if err := engine.Encrypt(candidate, scratch); err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(scratch.hash), []byte(c.hash)) == 1, nil
}

// Snapshot returns the persisted form of the record.
func (c *CredentialRecord) Snapshot() store.Record {
	return store.Record{
		Username: c.username,
		Email:    c.email,
		Hash:     c.hash,
		Salt:     c.salt,
		Engine:   c.kind.String(),
	}
}

// String renders the record as a text block.
func (c *CredentialRecord) String() string {
	return c.Snapshot().String()
}

// digestTarget receives an engine's output without touching a live record.
type digestTarget struct {
	salt string
	hash string
}

func (t *digestTarget) Salt() string        { return t.salt }
func (t *digestTarget) SetHash(hash string) { t.hash = hash }

func isUpperHex(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'A' && r <= 'F')
	}) < 0
}
