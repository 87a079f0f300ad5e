// Package shortcode generates the public identifiers of payment links.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Length of every generated code. 62^8 comfortably covers 2^40.
	Length = 8

	randomBytes = 5 // 40 bits
)

// Generate returns a fresh 8-character base62 code built from 40 bits of
// crypto/rand entropy, left-padded with '0'.
func Generate() (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading secure random bytes: %w", err)
	}

	var n uint64
	for _, b := range buf {
		n = n<<8 | uint64(b)
	}
	return Encode(n), nil
}

// Encode renders n in base62, left-padded to Length.
func Encode(n uint64) string {
	if n == 0 {
		return strings.Repeat(string(alphabet[0]), Length)
	}

	var out []byte
	for n > 0 {
		out = append(out, alphabet[n%62])
		n /= 62
	}
	for len(out) < Length {
		out = append(out, alphabet[0])
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Valid reports whether s has the shape of a generated code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
