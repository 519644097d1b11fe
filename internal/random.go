package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	// SaltMinChar and SaltMaxChar bound the printable, non-space ASCII range salts are drawn from.
	SaltMinChar = 33
	SaltMaxChar = 126
)

var saltSpan = big.NewInt(SaltMaxChar - SaltMinChar + 1)

// NewSalt returns length characters, each drawn uniformly from [SaltMinChar, SaltMaxChar].
// The randomness source is crypto/rand and is safe for concurrent use.
func NewSalt(length int) (string, error) {
	if length < 0 {
		return "", errors.New("invalid salt length")
	}

	var b strings.Builder
	b.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, saltSpan)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte(SaltMinChar + n.Int64()))
	}

	return b.String(), nil
}

// IsSaltChar reports whether c may appear in a generated salt.
func IsSaltChar(c rune) bool {
	return c >= SaltMinChar && c <= SaltMaxChar
}
