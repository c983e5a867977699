package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := newTestTokenManager()

	pair, err := tm.GenerateTokenPair("user-1", "manager", "MANAGER")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := tm.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "manager", claims.Username)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsWrongTokenType(t *testing.T) {
	tm := newTestTokenManager()

	pair, err := tm.GenerateTokenPair("user-1", "manager", "MANAGER")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("other-secret", "other-refresh", time.Minute, time.Hour)

	pair, err := other.GenerateTokenPair("user-1", "manager", "MANAGER")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := newTestTokenManager()
	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := tm.GenerateTokenPair("user-1", "manager", "MANAGER")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RefreshAccessToken(t *testing.T) {
	tm := newTestTokenManager()

	pair, err := tm.GenerateTokenPair("user-1", "admin", "ADMIN")
	require.NoError(t, err)

	access, expiresIn, err := tm.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(900), expiresIn)

	claims, err := tm.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Role)

	_, _, err = tm.RefreshAccessToken("garbage")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def", "abc.def", false},
		{"bearer abc.def", "abc.def", false},
		{"Basic abc", "", true},
		{"Bearer ", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
