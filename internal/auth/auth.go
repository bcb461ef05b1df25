// Package auth guards mutating endpoints with a single-operator login:
// the operator's bcrypt password hash lives in config, a successful login
// yields a short-lived HS256 session token.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "garagelog"

// ErrBadCredentials is returned for a wrong password.
var ErrBadCredentials = errors.New("bad credentials")

// Authenticator issues and verifies operator session tokens. A nil
// Authenticator means auth is disabled (development mode).
type Authenticator struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
}

// New builds an authenticator. Both secret and passwordHash are required;
// callers that have neither should pass a nil *Authenticator around instead.
func New(secret, passwordHash string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" || passwordHash == "" {
		return nil, errors.New("auth requires both a token secret and a password hash")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("password hash is not bcrypt: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		secret:       []byte(secret),
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
	}, nil
}

// Login checks the password and returns a signed session token.
func (a *Authenticator) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrBadCredentials
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a session token's signature, issuer and expiry.
func (a *Authenticator) Verify(tokenString string) error {
	_, err := jwt.Parse(tokenString,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	return nil
}

// HashPassword produces a bcrypt hash for config provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
