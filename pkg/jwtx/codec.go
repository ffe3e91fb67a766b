package jwtx

import "errors"

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Signer signs claims into a compact JWT.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier checks a JWT's signature and issuer and returns its claims.
// Expiry is deliberately NOT checked here: callers decide how much leeway
// applies (none for authentication, some for refresh).
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Codec is a matched signer/verifier pair.
type Codec interface {
	Signer
	Verifier
}
