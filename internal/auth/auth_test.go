package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("u1", "Alice")
	require.NoError(t, err)

	p, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "Alice", p.DisplayName)
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("u1", "Alice")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredCredential)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	verifier := NewJWTVerifier("secret-b")

	token, err := issuer.Issue("u1", "Alice")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyGarbage(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")
	_, err := verifier.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyMissingSubject(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("", "Alice")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
