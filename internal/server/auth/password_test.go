package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newFastHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.MinCost}
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := newFastHasher()

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, h.Verify("correct horse", hash))
	assert.False(t, h.Verify("battery staple", hash))
}

func TestPasswordHasher_Salted(t *testing.T) {
	h := newFastHasher()

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	assert.False(t, newFastHasher().Verify("pw", "not-a-bcrypt-hash"))
	assert.False(t, newFastHasher().Verify("pw", ""))
}

func TestNewPasswordHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher().cost)
}
