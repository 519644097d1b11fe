package password

import (
	"errors"
	"strings"
	"testing"
)

func fastArgon2Config() Argon2Config {
	return Argon2Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		KeyLength:   32,
	}
}

func TestArgon2EncryptDeterministicPerSalt(t *testing.T) {
	engine, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	a := &stubTarget{salt: "Ab3$eF"}
	b := &stubTarget{salt: "Ab3$eF"}
	if err := engine.Encrypt("P@ssw0rd-Ascii", a); err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if err := engine.Encrypt("P@ssw0rd-Ascii", b); err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if a.hash != b.hash {
		t.Fatalf("expected identical digests for identical inputs")
	}
	if len(a.hash) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a.hash))
	}
	if a.hash != strings.ToUpper(a.hash) {
		t.Fatalf("expected uppercase hex, got %s", a.hash)
	}
}

func TestArgon2SaltChangesDigest(t *testing.T) {
	engine, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	a := &stubTarget{salt: "aaaaaa"}
	b := &stubTarget{salt: "aaaaab"}
	_ = engine.Encrypt("correct-password", a)
	_ = engine.Encrypt("correct-password", b)
	if a.hash == b.hash {
		t.Fatal("expected different salts to produce different digests")
	}
}

func TestArgon2RejectsOversizedPassword(t *testing.T) {
	engine, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	target := &stubTarget{salt: "aaaaaa"}
	err = engine.Encrypt(strings.Repeat("p", MaxArgon2PasswordBytes+1), target)
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if target.sets != 0 {
		t.Fatal("target mutated on rejected input")
	}
}

func TestArgon2ConfigValidation(t *testing.T) {
	bad := []Argon2Config{
		{Memory: 1024, Time: 1, Parallelism: 1, KeyLength: 32},
		{Memory: 8192, Time: 0, Parallelism: 1, KeyLength: 32},
		{Memory: 8192, Time: 1, Parallelism: 0, KeyLength: 32},
		{Memory: 8192, Time: 1, Parallelism: 1, KeyLength: 8},
	}
	for i, cfg := range bad {
		if _, err := NewArgon2(cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}

	if err := ValidateArgon2Config(DefaultArgon2Config()); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}
