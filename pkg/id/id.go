package id

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is the character set used for external log identifiers.
// Identifiers are case-sensitive and URL-safe without escaping.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of characters in an external log identifier.
const Length = 16

// New returns a fresh random identifier of the default Length.
func New() (string, error) {
	return NewN(Length)
}

// NewN returns a fresh random identifier of n characters drawn uniformly
// from Alphabet using crypto/rand.
func NewN(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("id: invalid length %d", n)
	}
	// Rejection sampling keeps the draw uniform: 62 does not divide 256,
	// so plain modulo would bias toward the low end of the alphabet.
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	limit := byte(256 - 256%len(Alphabet))
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("id: read random: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// Valid reports whether s has the exact shape of an external identifier:
// default length, alphabet characters only.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
