// Package evmaddr validates EVM account addresses, including the EIP-55
// mixed-case checksum.
package evmaddr

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

var (
	ErrMalformed = errors.New("address must be 0x followed by 40 hex characters")
	ErrChecksum  = errors.New("address checksum mismatch")
)

// Validate accepts all-lowercase and all-uppercase addresses as-is and
// enforces the EIP-55 checksum on mixed-case input.
func Validate(addr string) error {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return ErrMalformed
	}
	body := addr[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return ErrMalformed
	}

	lower := strings.ToLower(body)
	if body == lower || body == strings.ToUpper(body) {
		return nil
	}
	if Checksum(addr) != addr {
		return ErrChecksum
	}
	return nil
}

// Checksum returns the EIP-55 encoding of a well-formed address.
func Checksum(addr string) string {
	lower := strings.ToLower(strings.TrimPrefix(addr, "0x"))

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}
