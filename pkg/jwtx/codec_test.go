package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "memberhub-test"

func testCodecs(t *testing.T) map[string]Codec {
	t.Helper()

	hs, err := NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)
	ed, err := NewEdDSA(testIssuer)
	require.NoError(t, err)

	return map[string]Codec{"HS256": hs, "EdDSA": ed}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for name, codec := range testCodecs(t) {
		t.Run(name, func(t *testing.T) {
			claims := NewAccessClaims("user-1", "Ananda", testIssuer, time.Hour, now)
			token, err := codec.Sign(claims)
			require.NoError(t, err)

			got, err := codec.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "user-1", got.Subject)
			require.Equal(t, "Ananda", got.DisplayName)
			require.Equal(t, testIssuer, got.Issuer)
		})
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	for name, codec := range testCodecs(t) {
		t.Run(name, func(t *testing.T) {
			token, err := codec.Sign(NewAccessClaims("user-1", "", testIssuer, time.Hour, now))
			require.NoError(t, err)

			parts := strings.Split(token, ".")
			require.Len(t, parts, 3)
			tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

			_, err = codec.Verify(tampered)
			require.Error(t, err)
		})
	}
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	t.Parallel()

	hs, err := NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)

	token, err := hs.Sign(NewAccessClaims("user-1", "", "someone-else", time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = hs.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsCrossAlgorithmToken(t *testing.T) {
	t.Parallel()

	codecs := testCodecs(t)
	token, err := codecs["HS256"].Sign(NewAccessClaims("user-1", "", testIssuer, time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = codecs["EdDSA"].Verify(token)
	require.Error(t, err)
}

func TestExpiryBoundaries(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	claims := NewAccessClaims("user-1", "", testIssuer, time.Hour, issued)

	require.NoError(t, claims.ValidateExpiry(issued))
	require.NoError(t, claims.ValidateExpiry(issued.Add(time.Hour-time.Second)))
	require.ErrorIs(t, claims.ValidateExpiry(issued.Add(time.Hour+time.Second)), ErrExpired)

	// Refresh leeway tolerates recently-lapsed tokens.
	require.NoError(t, claims.ValidateExpiryWithLeeway(issued.Add(time.Hour+time.Minute), DefaultRefreshLeeway))
	require.ErrorIs(t,
		claims.ValidateExpiryWithLeeway(issued.Add(time.Hour+6*time.Minute), DefaultRefreshLeeway),
		ErrExpired)
}

func TestHS256RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewHS256([]byte("too short"), testIssuer)
	require.Error(t, err)
}
