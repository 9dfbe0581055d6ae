package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-verifier-tests"

func signToken(t *testing.T, secret string, userID uuid.UUID, issued, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenSuccess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now()
	tokenString := signToken(t, testSecret, userID, now, now.Add(time.Hour))

	verifier := NewHMACVerifier(testSecret)
	claims, err := verifier.ValidateToken(context.Background(), tokenString)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt, time.Second)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now()
	tokenString := signToken(t, testSecret, userID, now.Add(-2*time.Hour), now.Add(-time.Hour))

	verifier := NewHMACVerifier(testSecret)
	_, err := verifier.ValidateToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now()
	tokenString := signToken(t, "a-completely-different-secret-key", userID, now, now.Add(time.Hour))

	verifier := NewHMACVerifier(testSecret)
	_, err := verifier.ValidateToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMissing(t *testing.T) {
	t.Parallel()

	verifier := NewHMACVerifier(testSecret)
	_, err := verifier.ValidateToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestValidateTokenMalformed(t *testing.T) {
	t.Parallel()

	verifier := NewHMACVerifier(testSecret)
	_, err := verifier.ValidateToken(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSigningMethod(t *testing.T) {
	t.Parallel()

	// alg=none tokens must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{UserID: uuid.NewString()})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	verifier := NewHMACVerifier(testSecret)
	_, err = verifier.ValidateToken(context.Background(), unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMalformedUserID(t *testing.T) {
	t.Parallel()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	verifier := NewHMACVerifier(testSecret)
	_, err = verifier.ValidateToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenNotYetValid(t *testing.T) {
	t.Parallel()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	verifier := NewHMACVerifier(testSecret)
	_, err = verifier.ValidateToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}
