package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignMessage returns a base64url HMAC-SHA256 signature of msg under key.
// Used for time-limited download URLs where the server is both signer and
// verifier.
func SignMessage(key []byte, msg string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyMessage reports whether sig is a valid signature of msg under key.
// Comparison is constant-time.
func VerifyMessage(key []byte, msg, sig string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return hmac.Equal(mac.Sum(nil), raw)
}
