// Package auth verifies bearer tokens and manages user profiles.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for malformed, expired or wrongly signed
	// tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrRevoked is returned for tokens that were signed out.
	ErrRevoked = errors.New("token has been revoked")
)

// Claims are the JWT claims issued to users.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// User is the authenticated caller.
type User struct {
	ID        string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticator signs and verifies HS256 tokens.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator using secret.
func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("auth: empty jwt secret")
	}
	return &Authenticator{secret: []byte(secret)}, nil
}

// Issue signs a token for the user, valid for ttl.
func (a *Authenticator) Issue(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns the user it identifies.
func (a *Authenticator) Verify(raw string) (*User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	u := &User{ID: claims.Subject, Email: claims.Email, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		u.ExpiresAt = claims.ExpiresAt.Time
	}
	return u, nil
}
