package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/models"
)

func newTestManager() *Manager {
	return NewManager(models.JWTConfig{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()
	id := models.Identity{UserID: "u-1", Role: models.RoleEmployee, ProfileID: "e-1", OwnerUserID: "u-owner"}

	tok, err := m.GenerateAccess(id)
	require.NoError(t, err)
	require.NotEmpty(t, tok.ID)

	claims, err := m.ParseAccess(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
	assert.Equal(t, "u-owner", claims.Identity().ActingUserID())
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := newTestManager()
	tok, err := m.GenerateRefresh(models.Identity{UserID: "u-1", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = m.ParseAccess(tok.Value)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	claims, err := m.ParseRefresh(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, tok.ID, claims.ID)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := newTestManager()
	issued := time.Now().Add(-2 * time.Minute)
	m.now = func() time.Time { return issued }
	tok, err := m.GenerateAccess(models.Identity{UserID: "u-1", Role: models.RoleDriver})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccess(tok.Value)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "expired")
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	other := NewManager(models.JWTConfig{Secret: "other", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	tok, err := other.GenerateAccess(models.Identity{UserID: "u-1", Role: models.RoleOwner})
	require.NoError(t, err)

	_, err = newTestManager().ParseAccess(tok.Value)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
