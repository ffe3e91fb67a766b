package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSACodec signs with an Ed25519 private key. Use this over HS256 when
// other services need to verify tokens without holding signing material.
type EdDSACodec struct {
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewEdDSA generates a fresh Ed25519 keypair. Tokens do not survive a
// restart; acceptable for dev and test.
func NewEdDSA(issuer string) (*EdDSACodec, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: keygen failed: %w", err)
	}
	return &EdDSACodec{priv: priv, pub: pub, issuer: issuer}, nil
}

// NewEdDSAFromPEM loads a PKCS8-encoded Ed25519 private key.
func NewEdDSAFromPEM(pemKey []byte, issuer string) (*EdDSACodec, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parsing PKCS8 key: %w", err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: PEM does not contain an Ed25519 key")
	}

	return &EdDSACodec{
		priv:   priv,
		pub:    priv.Public().(ed25519.PublicKey),
		issuer: issuer,
	}, nil
}

func (c *EdDSACodec) Alg() string { return "EdDSA" }

func (c *EdDSACodec) Sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := tok.SignedString(c.priv)
	if err != nil {
		return "", fmt.Errorf("jwtx: signing failed: %w", err)
	}
	return signed, nil
}

func (c *EdDSACodec) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, ErrAlgMismatch
		}
		return c.pub, nil
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
