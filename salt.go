package goCred

import "github.com/MrEthical07/goCred/internal"

// SaltLength is the number of characters drawn for every new salt.
const SaltLength = 6

// SaltGenerator produces salts for [CredentialRecord.SetPassword].
//
// Implementations must be safe for concurrent use and return exactly length
// characters, each with a code point in [33, 126].
type SaltGenerator interface {
	Generate(length int) (string, error)
}

// CryptoSaltGenerator draws salt characters from crypto/rand.
type CryptoSaltGenerator struct{}

// Generate implements [SaltGenerator].
func (CryptoSaltGenerator) Generate(length int) (string, error) {
	return internal.NewSalt(length)
}

func validSalt(salt string) bool {
	n := 0
	for _, r := range salt {
		if !internal.IsSaltChar(r) {
			return false
		}
		n++
	}
	return n == SaltLength
}
