// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidToken    = errors.New("invalid token")
)

const (
	// AdminSubject is the subject claim of every admin token
	AdminSubject = "admin"

	// AdminTokenTTL is how long an admin token stays valid
	AdminTokenTTL = 12 * time.Hour

	secretKeyChars  = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*(-_=+)"
	secretKeyLength = 50
)

// ValidateAdminKey compares the provided key with the configured one in
// constant time
func ValidateAdminKey(provided, expected string) error {
	if provided == "" || expected == "" {
		return ErrInvalidAdminKey
	}
	if !hmac.Equal([]byte(provided), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// IssueAdminToken signs an HS256 token for the admin console
func IssueAdminToken(secret string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(AdminTokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   AdminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAdminToken checks the signature, expiry and subject of an admin token
func ParseAdminToken(secret, tokenString string) error {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject != AdminSubject {
		return ErrInvalidToken
	}
	return nil
}

// GenerateSecretKey returns a random key suitable for SECRET_KEY
func GenerateSecretKey() (string, error) {
	max := big.NewInt(int64(len(secretKeyChars)))
	b := make([]byte, secretKeyLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate secret key: %w", err)
		}
		b[i] = secretKeyChars[n.Int64()]
	}
	return string(b), nil
}
