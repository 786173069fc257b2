package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("hunter2!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("hunter2!", "not-a-hash"))
}

func TestPasswordNeedsRehash(t *testing.T) {
	current, err := HashPassword("pw")
	require.NoError(t, err)
	assert.False(t, PasswordNeedsRehash(current))

	weak, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, PasswordNeedsRehash(string(weak)))

	// Unparsable hashes are left alone instead of forcing a rehash loop.
	assert.False(t, PasswordNeedsRehash("garbage"))
}
