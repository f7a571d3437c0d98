// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/identity-service/internal/config"
	"github.com/angelamos/identity-service/internal/core"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:   "test-secret-at-least-32-bytes-long!",
		Expire:   time.Hour,
		Issuer:   "identity-service",
		Audience: "identity-service-api",
	}
}

func TestSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner(config.JWTConfig{})
	require.Error(t, err)
}

func TestSignerRoundTrip(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	require.NoError(t, err)

	signed, expiresAt, err := signer.Issue(SessionClaims{
		UserID: "user-123",
		Email:  "round@example.com",
		Role:   "user",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := signer.VerifyAccessToken(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "round@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestSignerRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Expire = time.Hour

	signer, err := NewSigner(cfg)
	require.NoError(t, err)

	// Force a token already past its expiry.
	signer.config.Expire = -time.Minute
	signed, _, err := signer.Issue(SessionClaims{
		UserID: "user-123",
		Email:  "late@example.com",
		Role:   "user",
	})
	require.NoError(t, err)

	_, err = signer.VerifyAccessToken(context.Background(), signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestSignerRejectsTamperedToken(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	require.NoError(t, err)

	signed, _, err := signer.Issue(SessionClaims{
		UserID: "user-123",
		Email:  "tamper@example.com",
		Role:   "user",
	})
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = signer.VerifyAccessToken(context.Background(), tampered)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestSignerRejectsForeignKey(t *testing.T) {
	signer, err := NewSigner(testJWTConfig())
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "a-completely-different-signing-key!!"
	foreign, err := NewSigner(other)
	require.NoError(t, err)

	signed, _, err := foreign.Issue(SessionClaims{
		UserID: "user-123",
		Email:  "foreign@example.com",
		Role:   "user",
	})
	require.NoError(t, err)

	_, err = signer.VerifyAccessToken(context.Background(), signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestSignerRejectsWrongIssuer(t *testing.T) {
	issuerA := testJWTConfig()
	issuerA.Issuer = "someone-else"

	other, err := NewSigner(issuerA)
	require.NoError(t, err)

	signed, _, err := other.Issue(SessionClaims{
		UserID: "user-123",
		Email:  "issuer@example.com",
		Role:   "user",
	})
	require.NoError(t, err)

	signer, err := NewSigner(testJWTConfig())
	require.NoError(t, err)

	_, err = signer.VerifyAccessToken(context.Background(), signed)
	require.Error(t, err)
}
