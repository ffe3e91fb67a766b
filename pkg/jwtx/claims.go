package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of issued bearer tokens. Short-lived
// to limit the blast radius of a leaked token; clients renew via refresh.
const DefaultAccessTokenTTL = time.Hour

// DefaultRefreshLeeway is how far past expiry a signature-valid token may
// still be exchanged for a fresh one.
const DefaultRefreshLeeway = 5 * time.Minute

// Claims are the bearer-token claims. The token is fully self-contained:
// nothing about a session is stored server-side.
type Claims struct {
	jwt.RegisteredClaims

	// DisplayName is the member's resolved display name, carried so the
	// frontend can greet the user without an extra profile fetch.
	DisplayName string `json:"name,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for a member.
func NewAccessClaims(subject, displayName, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		DisplayName: displayName,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry(now time.Time) error {
	return c.ValidateExpiryWithLeeway(now, 0)
}

// ValidateExpiryWithLeeway adds a grace period for clock skew, or for the
// refresh flow which tolerates recently-lapsed tokens.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	now = now.UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
