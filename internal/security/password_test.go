package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tazhibayda/radiostation-service/internal/security"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := security.NewHasher(bcrypt.MinCost)
	for _, pw := range []string{"", "a", "correct horse battery staple", "пароль-ünïcödé"} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash)
		assert.True(t, h.Check(hash, pw), "verify(p, hash(p)) for %q", pw)
		assert.False(t, h.Check(hash, pw+"x"), "verify(p, hash(q)) for %q", pw)
	}
}

func TestHasher_Salted(t *testing.T) {
	h := security.NewHasher(bcrypt.MinCost)
	a, err := h.Hash("same-input")
	require.NoError(t, err)
	b, err := h.Hash("same-input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_MalformedHash(t *testing.T) {
	h := security.NewHasher(bcrypt.MinCost)
	for _, bad := range []string{"", "not-a-hash", "$2a$", "$2a$99$abcdefghijklmnopqrstuv", "\x00\x01"} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Check(bad, "anything"))
		})
	}
}

func TestNewHasher_CostBounds(t *testing.T) {
	assert.Equal(t, security.DefaultCost, security.NewHasher(0).Cost)
	assert.Equal(t, security.DefaultCost, security.NewHasher(bcrypt.MaxCost+1).Cost)
	assert.Equal(t, 12, security.NewHasher(12).Cost)
}

func TestHasher_DefaultCost(t *testing.T) {
	hash, err := security.NewHasher(security.DefaultCost).Hash("pw")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, security.DefaultCost, cost)
}
