package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken_RoundTrip(t *testing.T) {
	raw, err := GenerateToken("secret", "user-9", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.UserID)
}

func TestParseToken_Expired(t *testing.T) {
	raw, err := GenerateToken("secret", "user-9", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
