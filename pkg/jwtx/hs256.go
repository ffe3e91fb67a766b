package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Codec signs and verifies tokens with a shared HMAC secret. Suitable
// when the issuer and every verifier are the same deployment.
type HS256Codec struct {
	secret []byte
	issuer string
}

// NewHS256 builds a codec from a shared secret. The secret must be at least
// 32 bytes so the HMAC key has as much strength as the hash.
func NewHS256(secret []byte, issuer string) (*HS256Codec, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwtx: HS256 secret must be at least 32 bytes")
	}
	return &HS256Codec{secret: secret, issuer: issuer}, nil
}

func (c *HS256Codec) Alg() string { return "HS256" }

func (c *HS256Codec) Sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: signing failed: %w", err)
	}
	return signed, nil
}

func (c *HS256Codec) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return Claims{}, classifyParseError(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, ErrIssuer
	}
	return claims, nil
}

// classifyParseError maps golang-jwt errors onto the package sentinels.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
