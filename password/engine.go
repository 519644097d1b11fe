package password

import (
	"errors"
	"fmt"
)

var (
	// ErrPasswordTooLong is returned when a password does not fit the engine's input bound.
	ErrPasswordTooLong = errors.New("password too long for salt")
	// ErrUnknownEngine is returned when a Kind has no registered engine.
	ErrUnknownEngine = errors.New("unknown encryption engine")
)

// Kind identifies an engine implementation. The zero Kind is invalid.
type Kind uint8

const (
	// KindKeyedTransposition selects the [KeyedTransposition] engine.
	KindKeyedTransposition Kind = iota + 1
	// KindArgon2id selects the [Argon2] engine.
	KindArgon2id
)

func (k Kind) String() string {
	switch k {
	case KindKeyedTransposition:
		return "keyed-transposition"
	case KindArgon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind resolves the tag produced by [Kind.String].
func ParseKind(s string) (Kind, error) {
	switch s {
	case "keyed-transposition":
		return KindKeyedTransposition, nil
	case "argon2id":
		return KindArgon2id, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

// Target is the record an engine reads the salt from and writes the digest into.
type Target interface {
	Salt() string
	SetHash(hash string)
}

// Engine computes a digest for password using target's salt and stores it with
// target.SetHash. On error the target is left untouched.
type Engine interface {
	Kind() Kind
	Encrypt(password string, target Target) error
}

// Registry is an immutable set of engines keyed by Kind.
// It is safe for concurrent use.
type Registry struct {
	engines map[Kind]Engine
}

// NewRegistry builds a registry from engines. Nil engines and duplicate kinds are rejected.
func NewRegistry(engines ...Engine) (*Registry, error) {
	r := &Registry{engines: make(map[Kind]Engine, len(engines))}
	for _, e := range engines {
		if e == nil {
			return nil, errors.New("nil engine")
		}
		if _, dup := r.engines[e.Kind()]; dup {
			return nil, fmt.Errorf("duplicate engine %s", e.Kind())
		}
		r.engines[e.Kind()] = e
	}
	return r, nil
}

// DefaultRegistry holds the keyed transposition engine and an Argon2id engine
// configured with [DefaultArgon2Config].
func DefaultRegistry() *Registry {
	a, err := NewArgon2(DefaultArgon2Config())
	if err != nil {
		panic(err)
	}
	r, err := NewRegistry(KeyedTransposition{}, a)
	if err != nil {
		panic(err)
	}
	return r
}

// Engine returns the engine registered for kind.
func (r *Registry) Engine(kind Kind) (Engine, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, kind)
	}
	e, ok := r.engines[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, kind)
	}
	return e, nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind Kind) bool {
	if r == nil {
		return false
	}
	_, ok := r.engines[kind]
	return ok
}
