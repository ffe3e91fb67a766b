package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, a, 43) // 32 bytes base64url, no padding

	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestGenerateTokenRejectsNonPositiveSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1} {
		_, err := GenerateToken(size)
		require.Error(t, err)
	}
}

func TestSignAndVerifyMessage(t *testing.T) {
	t.Parallel()

	key := []byte("0123456789abcdef0123456789abcdef")
	sig := SignMessage(key, "uploads/abc|1735689600")

	require.True(t, VerifyMessage(key, "uploads/abc|1735689600", sig))
	require.False(t, VerifyMessage(key, "uploads/abc|1735689601", sig))
	require.False(t, VerifyMessage([]byte("other key material here........."), "uploads/abc|1735689600", sig))
	require.False(t, VerifyMessage(key, "uploads/abc|1735689600", "not base64!"))
}
