package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewSalt(t *testing.T) {
	a, err := NewSalt()
	require.NoError(t, err)
	b, err := NewSalt()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestHasherRoundTrip(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("pw123", "salt-a")
	require.NoError(t, err)

	ok, err := h.Verify(hash, "pw123", "salt-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "pw124", "salt-a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.Verify(hash, "pw123", "salt-b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasherLongPassword(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	long := strings.Repeat("x", 200)

	hash, err := h.Hash(long, "salt")
	require.NoError(t, err)

	ok, err := h.Verify(hash, long+"y", "salt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformedHash(t *testing.T) {
	_, err := Hasher{}.Verify("not-a-bcrypt-hash", "pw", "salt")
	assert.Error(t, err)
}
