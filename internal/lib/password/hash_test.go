package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompareHash(t *testing.T) {
	hash, err := GetHash("p@ss")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "p@ss", hash)

	assert.NoError(t, CompareHash(hash, "p@ss"))
}

func TestCompareHash_WrongPassword(t *testing.T) {
	hash, err := GetHash("p@ss")
	require.NoError(t, err)

	assert.Error(t, CompareHash(hash, "wrong"))
}

// Два хэша одного пароля различаются из-за соли, но оба проверяются успешно.
func TestGetHash_SaltedHashesDiffer(t *testing.T) {
	hash1, err := GetHash("p@ss")
	require.NoError(t, err)
	hash2, err := GetHash("p@ss")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.NoError(t, CompareHash(hash1, "p@ss"))
	assert.NoError(t, CompareHash(hash2, "p@ss"))
}
