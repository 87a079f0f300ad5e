package shortcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_PadsToFixedLength(t *testing.T) {
	assert.Equal(t, "00000000", Encode(0))
	assert.Equal(t, "00000001", Encode(1))
	assert.Equal(t, "0000000Z", Encode(61))
	assert.Equal(t, "00000010", Encode(62))
}

func TestEncode_MaxFortyBits(t *testing.T) {
	code := Encode(1<<40 - 1)
	assert.Len(t, code, Length)
	assert.True(t, Valid(code))
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.True(t, Valid(code), "generated code %q should be valid", code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190, "codes should not repeat in a small sample")
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("aZ09bY18"))
	assert.False(t, Valid("short"))
	assert.False(t, Valid("aZ09bY1-"))
	assert.False(t, Valid("aZ09bY18x"))
}
