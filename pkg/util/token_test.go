package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(64)
	require.NoError(t, err)
	assert.Len(t, a, 128)

	b, err := GenerateToken(64)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}

func TestNewID(t *testing.T) {
	id, err := NewID(16)
	require.NoError(t, err)
	assert.Len(t, id, 16)
	assert.Regexp(t, "^[a-zA-Z]+$", id)
}
