package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const cookieIssuer = "academic-console"

// CookieSigner issues and verifies the signed console cookie that carries a
// browser's workspace id.
type CookieSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCookieSigner constructs a signer using HS256 with secret.
func NewCookieSigner(secret string, ttl time.Duration) *CookieSigner {
	return &CookieSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewWorkspaceID returns a fresh random workspace id.
func NewWorkspaceID() string {
	return uuid.NewString()
}

// Issue signs id into a cookie value.
func (s *CookieSigner) Issue(id string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  id,
		Issuer:   cookieIssuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign console cookie: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns the workspace id it carries.
func (s *CookieSigner) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse console cookie: %w", err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errors.New("console cookie carries an invalid workspace id")
	}
	return claims.Subject, nil
}

// TTL is the lifetime of issued cookies.
func (s *CookieSigner) TTL() time.Duration {
	return s.ttl
}
