package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42, "alice@example.com", "secret", "go-secureprint", 7*24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "go-secureprint", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateToken(1, "a@example.com", "secret", "test", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(1, "a@example.com", "secret", "test", -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "wrong secret", token: valid, secret: "other"},
		{name: "expired", token: expired, secret: "secret"},
		{name: "garbage", token: "not-a-jwt", secret: "secret"},
		{name: "empty", token: "", secret: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}
