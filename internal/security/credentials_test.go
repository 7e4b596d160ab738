package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	passwords := []string{"pw5", "correct horse battery staple", "päss wörd", ""}

	for _, pw := range passwords {
		hash, err := HashPassword(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash)
		assert.True(t, VerifyPassword(pw, hash))
		assert.False(t, VerifyPassword(pw+"x", hash))
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := HashPassword("same password")
	require.NoError(t, err)
	h2, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword("same password", h1))
	assert.True(t, VerifyPassword("same password", h2))
}

func TestVerifyMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything", ""))
	assert.False(t, VerifyPassword("anything", "not-a-bcrypt-hash"))
	assert.False(t, VerifyPassword("anything", "$2a$garbage"))
}
