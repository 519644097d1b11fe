package password

import (
	"bytes"
	"strconv"
	"unicode/utf8"
)

const (
	// MaxKeyedInput bounds len(password)+len(salt), counted in characters.
	MaxKeyedInput = 28

	saltSegmentLen = 3
	keyModulus     = 99999
	caseBit        = 32
	expansionBit   = 256
)

const hexDigits = "0123456789ABCDEF"

// KeyedTransposition is the keyboard-keyed substitution and bit diffusion engine.
//
// The digest of a (password, salt) pair is fully deterministic: the same inputs
// produce the same uppercase hex string on every platform.
type KeyedTransposition struct{}

// Kind implements [Engine].
func (KeyedTransposition) Kind() Kind { return KindKeyedTransposition }

// Encrypt implements [Engine].
func (KeyedTransposition) Encrypt(password string, target Target) error {
	hash, err := Digest(password, target.Salt())
	if err != nil {
		return err
	}
	target.SetHash(hash)
	return nil
}

// Digest runs the keyed transposition pipeline over password and salt.
//
// It fails only with [ErrPasswordTooLong] when the password has more than
// MaxKeyedInput minus len(salt) characters.
func Digest(password, salt string) (string, error) {
	if utf8.RuneCountInString(password) > MaxKeyedInput-utf8.RuneCountInString(salt) {
		return "", ErrPasswordTooLong
	}

	pw := []rune(password)
	key := deriveKey(pw)

	segment := []rune(salt)
	if len(segment) > saltSegmentLen {
		segment = segment[len(segment)-saltSegmentLen:]
	}

	salted := make([]rune, 0, len(pw)+len(segment))
	salted = append(salted, pw...)
	salted = append(salted, segment...)
	salted = substitute(salted, key)

	bits := expand(segment, salted)

	var splitKey int
	if len(salted) > 0 {
		splitKey = int(salted[0])
	}
	diffuse(bits, splitKey)

	return encodeHex(bits), nil
}

// deriveKey returns one decimal digit per keyboard row.
//
// Arithmetic is 32-bit two's complement: the sum wraps, the shift count keeps
// its low five bits and the remainder is truncated toward zero.
func deriveKey(pw []rune) string {
	var sum int32
	for _, r := range pw {
		sum += int32(r)
	}

	var edge int32
	if len(pw) > 0 {
		edge = int32(pw[0]) | int32(pw[len(pw)-1])
	}

	raw := abs32((sum << (uint32(abs32(edge)) & 31)) % keyModulus)

	digits := strconv.FormatInt(int64(raw), 10)
	for len(digits) < rowCount {
		digits = "0" + digits
	}
	return digits[len(digits)-rowCount:]
}

// substitute shifts keyboard characters along their row by the row's key digit
// and flips the case bit of every character. It returns a new slice.
func substitute(in []rune, key string) []rune {
	out := make([]rune, len(in))
	for i, c := range in {
		if row, _, ok := locate(c); ok {
			shift := int(key[row] - '0')
			c = keyboard[row][(row+shift)%len(keyboard[row])]
		}
		out[i] = c ^ caseBit
	}
	return out
}

// expand renders every character as the binary digits of 256|codepoint.
func expand(segment, salted []rune) []byte {
	bits := make([]byte, 0, (len(segment)+len(salted))*9)
	for _, c := range segment {
		bits = strconv.AppendInt(bits, int64(expansionBit|c), 2)
	}
	for _, c := range salted {
		bits = strconv.AppendInt(bits, int64(expansionBit|c), 2)
	}
	return bits
}

// diffuse applies the alternating split rounds times in place. Odd-indexed bits
// move to the front half, even-indexed bits to the back half.
func diffuse(bits []byte, rounds int) {
	if rounds <= 0 || len(bits) < 2 {
		return
	}

	start := bytes.Clone(bits)
	cur, next := bits, make([]byte, len(bits))
	periodic := false

	for r := 1; r <= rounds; r++ {
		split(next, cur)
		cur, next = next, cur

		// Each round is a fixed permutation, so once the input reappears the
		// remaining rounds reduce modulo the period.
		if !periodic && r < rounds && bytes.Equal(cur, start) {
			periodic = true
			rounds = r + (rounds-r)%r
		}
	}

	copy(bits, cur)
}

func split(dst, src []byte) {
	j := 0
	for i := 1; i < len(src); i += 2 {
		dst[j] = src[i]
		j++
	}
	for i := 0; i < len(src); i += 2 {
		dst[j] = src[i]
		j++
	}
}

// encodeHex reads the bit string in nibbles aligned to its tail. A short leading
// group becomes the first digit.
func encodeHex(bits []byte) string {
	out := make([]byte, 0, (len(bits)+3)/4)
	for end := len(bits); end > 0; end -= 4 {
		var v byte
		for j := 0; j < 4 && end-1-j >= 0; j++ {
			if bits[end-1-j] == '1' {
				v |= 1 << j
			}
		}
		out = append(out, hexDigits[v])
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
