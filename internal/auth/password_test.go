package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatehub/template-manager/internal/auth"
)

func TestHasherHash(t *testing.T) {
	hasher := auth.NewHasher()

	t.Run("produces an argon2id hash", func(t *testing.T) {
		hash, err := hasher.Hash("Sup3rSecret!")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("same password produces different hashes", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestHasherVerify(t *testing.T) {
	hasher := auth.NewHasher()

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery staple")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("correct horse battery staple", hash))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("wrongpassword", hash))
	})

	t.Run("malformed hash fails closed", func(t *testing.T) {
		assert.False(t, hasher.Verify("password", "not-a-valid-hash"))
		assert.False(t, hasher.Verify("password", ""))
		assert.False(t, hasher.Verify("password", "$argon2id$v=19$garbage$c2FsdA$aGFzaA"))
	})

	t.Run("corrupted salt fails closed", func(t *testing.T) {
		hash, err := hasher.Hash("password")
		require.NoError(t, err)
		parts := strings.Split(hash, "$")
		parts[4] = "!!!invalid!!!"
		assert.False(t, hasher.Verify("password", strings.Join(parts, "$")))
	})

	t.Run("empty password still round-trips", func(t *testing.T) {
		hash, err := hasher.Hash("")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("", hash))
		assert.False(t, hasher.Verify("nonempty", hash))
	})
}
