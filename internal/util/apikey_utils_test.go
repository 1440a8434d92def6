package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	fullKey, prefix, last4, keyHash, err := GenerateAPIKey("pepper")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fullKey, "pg_"+prefix+"_"))
	assert.Len(t, prefix, 8)
	assert.Len(t, last4, 4)
	assert.True(t, strings.HasSuffix(fullKey, last4))
	assert.Equal(t, HashAPIKey("pepper", fullKey), keyHash)

	// Secret length guarantees well over 128 bits of entropy.
	secret := strings.TrimPrefix(fullKey, "pg_"+prefix+"_")
	assert.Len(t, secret, 32)
}

func TestGenerateAPIKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		fullKey, _, _, _, err := GenerateAPIKey("pepper")
		require.NoError(t, err)
		assert.False(t, seen[fullKey], "duplicate key generated")
		seen[fullKey] = true
	}
}

func TestHashAPIKeyPepperMatters(t *testing.T) {
	assert.NotEqual(t, HashAPIKey("pepper-a", "pg_abc_def"), HashAPIKey("pepper-b", "pg_abc_def"))
	assert.Equal(t, HashAPIKey("pepper-a", "pg_abc_def"), HashAPIKey("pepper-a", "pg_abc_def"))
}

func TestSplitAPIKey(t *testing.T) {
	prefix, ok := SplitAPIKey("pg_abcd1234_secretsecretsecret")
	assert.True(t, ok)
	assert.Equal(t, "abcd1234", prefix)

	for _, bad := range []string{"", "pg_", "pg_abcd1234", "lm_abcd1234_secret", "pg__secret", "pg_abcd1234_", "plainstring"} {
		_, ok := SplitAPIKey(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}
