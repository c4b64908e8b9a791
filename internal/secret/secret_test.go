package secret_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/secret"
)

func TestPassword(t *testing.T) {
	seen := make(map[string]bool)

	for range 50 {
		p, err := secret.Password()
		require.NoError(t, err)
		require.Len(t, p, secret.PasswordLen)

		for i := range len(p) {
			assert.True(t, bytes.IndexByte(secret.PasswordChars, p[i]) >= 0, "unexpected %q", p[i])
		}

		assert.False(t, seen[p], "duplicate password")
		seen[p] = true
	}
}

func TestFromChars(t *testing.T) {
	s, err := secret.FromChars(64, []byte("ab"))
	require.NoError(t, err)
	assert.Len(t, s, 64)
	assert.Empty(t, bytes.Trim([]byte(s), "ab"))

	s, err = secret.FromChars(0, []byte("ab"))
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = secret.FromChars(8, []byte("a"))
	require.Error(t, err)
}

func TestToken(t *testing.T) {
	a, err := secret.Token()
	require.NoError(t, err)
	b, err := secret.Token()
	require.NoError(t, err)

	assert.Len(t, a, 2*secret.TokenBytes)
	assert.NotEqual(t, a, b)
}
