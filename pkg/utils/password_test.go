package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	require.True(t, CheckPasswordHash("correct horse", hash))
	require.False(t, CheckPasswordHash("wrong horse", hash))
	require.False(t, CheckPasswordHash("correct horse", "not-a-hash"))
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestBurnPasswordCheckDoesNotPanic(t *testing.T) {
	require.NotEmpty(t, dummyHash)
	require.NotPanics(t, func() { BurnPasswordCheck("anything") })
}
