package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Hour, "dev")
	require.NoError(t, err)

	token, err := svc.Sign("user-1", "a@example.com", "RECRUITER")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "RECRUITER", claims.Role)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	a, err := NewTokenService("one", time.Hour, "dev")
	require.NoError(t, err)
	b, err := NewTokenService("two", time.Hour, "dev")
	require.NoError(t, err)

	token, err := a.Sign("user-1", "", "CANDIDATE")
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyExpired(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Minute, "dev")
	require.NoError(t, err)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Sign("user-1", "", "CANDIDATE")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyGarbage(t *testing.T) {
	svc, err := NewTokenService("", 0, "dev")
	require.NoError(t, err)
	_, err = svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProductionRequiresSecret(t *testing.T) {
	_, err := NewTokenService(" ", time.Hour, "production")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestSignRequiresUserID(t *testing.T) {
	svc, err := NewTokenService("x", time.Hour, "dev")
	require.NoError(t, err)
	_, err = svc.Sign("", "a@example.com", "ADMIN")
	assert.Error(t, err)
}
