// Package token issues and validates signed bearer credentials.
//
// A credential is a stateless HMAC-signed JWT carrying the subject and an
// expiry instant. Nothing about the credential is stored server side; only
// the subject it names is durable.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any credential the issuer does not
// accept: bad signature, malformed token, past expiry or missing subject.
// Callers must not be able to tell those cases apart.
var ErrInvalidToken = errors.New("invalid token")

type Issuer struct {
	secret     secretProvider
	defaultTTL time.Duration
}

type IssuerConfig struct {
	Secret     secretProvider
	DefaultTTL time.Duration
}

func NewIssuer(cfg IssuerConfig) *Issuer {
	return &Issuer{
		secret:     cfg.Secret,
		defaultTTL: cfg.DefaultTTL,
	}
}

// Issue signs a credential for subject expiring after ttl. A zero ttl
// falls back to the configured default.
func (i *Issuer) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = i.defaultTTL
	}

	now := time.Now()
	tk, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString(i.secret.Get())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tk, nil
}

// Validate verifies the signature and expiry of raw and returns the
// embedded subject.
func (i *Issuer) Validate(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tk, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return i.secret.Get(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !tk.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
