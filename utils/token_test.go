package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("client-secret", "admin-secret")

	token, err := issuer.Generate(AudienceClient, "64f0c2a7e4b0aa0001234567", "client@example.com", "client")
	require.NoError(t, err)

	claims, err := issuer.Parse(AudienceClient, token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c2a7e4b0aa0001234567", claims.UserID)
	assert.Equal(t, "client@example.com", claims.Email)
	assert.Equal(t, "client", claims.Role)
	assert.Equal(t, string(AudienceClient), claims.Audience)
}

func TestAudienceIsolation(t *testing.T) {
	issuer := NewTokenIssuer("client-secret", "admin-secret")

	clientToken, err := issuer.Generate(AudienceClient, "abc", "client@example.com", "client")
	require.NoError(t, err)
	adminToken, err := issuer.Generate(AudienceAdmin, "", "admin@example.com", "admin")
	require.NoError(t, err)

	// A token minted for one audience never verifies under the other.
	_, err = issuer.Parse(AudienceAdmin, clientToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.Parse(AudienceClient, adminToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAudienceIsolationWithSharedSecret(t *testing.T) {
	// Even with identical secrets the audience claim keeps the populations
	// apart.
	issuer := NewTokenIssuer("same-secret", "same-secret")

	clientToken, err := issuer.Generate(AudienceClient, "abc", "client@example.com", "client")
	require.NoError(t, err)

	_, err = issuer.Parse(AudienceAdmin, clientToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenLifetimes(t *testing.T) {
	issuer := NewTokenIssuer("client-secret", "admin-secret")
	now := time.Now()

	clientToken, err := issuer.Generate(AudienceClient, "abc", "c@example.com", "client")
	require.NoError(t, err)
	claims, err := issuer.Parse(AudienceClient, clientToken)
	require.NoError(t, err)
	assert.InDelta(t, now.Add(30*24*time.Hour).Unix(), claims.ExpiresAt, 5)

	adminToken, err := issuer.Generate(AudienceAdmin, "", "a@example.com", "admin")
	require.NoError(t, err)
	claims, err = issuer.Parse(AudienceAdmin, adminToken)
	require.NoError(t, err)
	assert.InDelta(t, now.Add(24*time.Hour).Unix(), claims.ExpiresAt, 5)
}

func TestParseGarbage(t *testing.T) {
	issuer := NewTokenIssuer("client-secret", "admin-secret")

	_, err := issuer.Parse(AudienceClient, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse(Audience("other"), "whatever")
	assert.ErrorIs(t, err, ErrUnknownAudience)
}
