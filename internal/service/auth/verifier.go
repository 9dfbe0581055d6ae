package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the validated claims extracted from a bearer token.
// Tokens are issued by the external identity service; this package only
// verifies them.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// TokenVerifier validates bearer tokens and extracts their claims.
type TokenVerifier interface {
	// ValidateToken validates the provided token string and extracts the
	// claims. Returns ErrInvalidToken or ErrExpiredToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// jwtClaims is the wire-level claims structure used during parsing.
type jwtClaims struct {
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// hmacVerifier validates HS256-signed tokens against a shared secret.
type hmacVerifier struct {
	secret []byte
}

// Ensure hmacVerifier implements TokenVerifier interface
var _ TokenVerifier = (*hmacVerifier)(nil)

// NewHMACVerifier creates a TokenVerifier for HS256-signed tokens.
func NewHMACVerifier(secret string) TokenVerifier {
	return &hmacVerifier{secret: []byte(secret)}
}

// ValidateToken implements TokenVerifier.ValidateToken.
func (v *hmacVerifier) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, fmt.Errorf("%w: %v", ErrTokenNotYetValid, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed user ID claim", ErrInvalidToken)
	}

	out := &Claims{
		UserID:  userID,
		Subject: claims.Subject,
		ID:      claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
