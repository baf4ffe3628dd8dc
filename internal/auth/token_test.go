package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/app/config"
	"github.com/gatewarden/gatewarden/internal/shared"
)

func testTokenManager(accessTTL, refreshTTL time.Duration) *TokenManager {
	return NewTokenManager(&config.Config{
		AccessTokenSecret:  "access-secret-for-tests",
		RefreshTokenSecret: "refresh-secret-for-tests",
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := testTokenManager(time.Hour, 168*time.Hour)

	raw, err := tm.MintAccess(42, "alice", 7, "Editor")
	require.NoError(t, err)

	claims, err := tm.VerifyAccess(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, int64(7), claims.RoleID)
	require.Equal(t, "Editor", claims.RoleName)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tm := testTokenManager(time.Hour, 168*time.Hour)

	raw, expiresAt, err := tm.MintRefresh(42)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(168*time.Hour), expiresAt, time.Minute)

	claims, err := tm.VerifyRefresh(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsCrossKindTokens(t *testing.T) {
	tm := testTokenManager(time.Hour, 168*time.Hour)

	access, err := tm.MintAccess(42, "alice", 7, "Editor")
	require.NoError(t, err)
	refresh, _, err := tm.MintRefresh(42)
	require.NoError(t, err)

	// Each kind is signed with its own secret.
	_, err = tm.VerifyRefresh(access)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	_, err = tm.VerifyAccess(refresh)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestVerifyRejectsExpiredAccessToken(t *testing.T) {
	tm := testTokenManager(-time.Minute, 168*time.Hour)

	raw, err := tm.MintAccess(42, "alice", 7, "Editor")
	require.NoError(t, err)

	_, err = tm.VerifyAccess(raw)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	tm := testTokenManager(time.Hour, 168*time.Hour)

	raw, err := tm.MintAccess(42, "alice", 7, "Editor")
	require.NoError(t, err)

	_, err = tm.VerifyAccess(raw + "x")
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}
