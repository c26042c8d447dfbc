package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestBoxRoundTrip(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)

	sealed, err := box.Seal("patient disclosed history of abuse")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "abuse")

	again, err := box.Seal("patient disclosed history of abuse")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "patient disclosed history of abuse", plain)
}

func TestNewBoxRejectsBadKeys(t *testing.T) {
	_, err := NewBox("zz")
	assert.Error(t, err)

	_, err = NewBox(strings.Repeat("ab", 16))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestOpenWithWrongKey(t *testing.T) {
	a, _ := NewBox(testKey)
	b, _ := NewBox(strings.Repeat("ff", 32))

	sealed, err := a.Seal("secret")
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.Error(t, err)

	_, err = a.Open("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}
