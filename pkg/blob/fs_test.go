package blob

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir(), []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return s
}

func TestPutOpenDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.Put(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", strings.NewReader("hello sangha"))
	require.NoError(t, err)
	require.EqualValues(t, 12, n)

	r, err := s.Open(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "hello sangha", string(data))

	require.NoError(t, s.Delete(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"))
	_, err = s.Open(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	require.NoError(t, s.Delete(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"))
}

func TestKeyTraversalRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	for _, key := range []string{"", "../etc/passwd", "a/b", `a\b`, ".."} {
		_, err := s.Put(ctx, key, strings.NewReader("x"))
		require.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestSignedPathRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	path := s.SignedPath("somekey", now.Add(15*time.Minute))
	u, err := url.Parse(path)
	require.NoError(t, err)
	require.Equal(t, "/v1/files/somekey", u.Path)

	exp := u.Query().Get("exp")
	sig := u.Query().Get("sig")

	require.NoError(t, s.VerifyPath("somekey", exp, sig, now))
	require.NoError(t, s.VerifyPath("somekey", exp, sig, now.Add(15*time.Minute-time.Second)))
	require.ErrorIs(t, s.VerifyPath("somekey", exp, sig, now.Add(16*time.Minute)), ErrLinkExpired)

	// Signature binds the key and expiry together.
	require.ErrorIs(t, s.VerifyPath("otherkey", exp, sig, now), ErrBadSignature)
	require.ErrorIs(t, s.VerifyPath("somekey", "9999999999", sig, now), ErrBadSignature)
}
