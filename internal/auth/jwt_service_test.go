package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 0)

	token, issued, err := svc.GenerateAccessToken(7, "alice")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenKindAccess, claims.Kind)
	assert.Equal(t, issued.ID, claims.ID)
	assert.InDelta(t, time.Hour.Seconds(), claims.Remaining(time.Now()).Seconds(), 5)
	assert.Equal(t, DefaultRefreshTokenExpiry, svc.RefreshTTL())
}

func TestJWTService_KindMismatch(t *testing.T) {
	svc := NewJWTService("test-secret", 0, 0)

	_, refresh, err := svc.GenerateRefreshToken(7, "alice")
	require.NoError(t, err)
	access, _, err := svc.GenerateAccessToken(7, "alice")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenKindRefresh, claims.Kind)
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, time.Hour)
	other := NewJWTService("other-secret", time.Hour, time.Hour)
	expired := NewJWTService("test-secret", time.Nanosecond, time.Hour)

	foreign, _, err := other.GenerateAccessToken(1, "bob")
	require.NoError(t, err)
	stale, _, err := expired.GenerateAccessToken(1, "bob")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", foreign},
		{"expired", stale},
		{"garbage", "not-a-jwt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	digest, err := h.Hash("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", digest)
	assert.True(t, h.Verify(digest, "s3cret"))
	assert.False(t, h.Verify(digest, "wrong"))
	assert.False(t, h.Verify("not-a-digest", "s3cret"))
}
