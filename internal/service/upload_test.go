package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opensangha/memberhub/pkg/blob"
)

func newUploadService(t *testing.T) *UploadService {
	t.Helper()

	blobs, err := blob.NewFSStore(t.TempDir(), []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	return &UploadService{
		Store:    newTestStore(t),
		Blobs:    blobs,
		MaxBytes: 64,
	}
}

func TestUploadSaveAndLink(t *testing.T) {
	svc := newUploadService(t)
	ctx := context.Background()

	owner := seedMember(t, svc.Store, "owner@example.org")

	up, err := svc.Save(ctx, owner.ID, "notes.txt", "text/plain", strings.NewReader("hello sangha"))
	require.NoError(t, err)
	require.Equal(t, int64(len("hello sangha")), up.SizeBytes)
	require.Equal(t, "text/plain", up.ContentType)

	rc, err := svc.Blobs.Open(ctx, up.BlobKey)
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "hello sangha", string(body))

	url, expiresAt, err := svc.SignedLink(ctx, up.ID)
	require.NoError(t, err)
	require.Contains(t, url, "sig=")
	require.False(t, expiresAt.IsZero())

	_, _, err = svc.SignedLink(ctx, "missing")
	require.ErrorIs(t, err, ErrUploadNotFound)

	mine, err := svc.ListForOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestUploadSizeCap(t *testing.T) {
	svc := newUploadService(t)
	ctx := context.Background()

	owner := seedMember(t, svc.Store, "owner@example.org")

	_, err := svc.Save(ctx, owner.ID, "big.bin", "", strings.NewReader(strings.Repeat("x", 65)))
	require.ErrorIs(t, err, ErrUploadTooLarge)

	// At exactly the cap the upload is accepted.
	up, err := svc.Save(ctx, owner.ID, "ok.bin", "", strings.NewReader(strings.Repeat("x", 64)))
	require.NoError(t, err)
	require.Equal(t, int64(64), up.SizeBytes)
	require.Equal(t, "application/octet-stream", up.ContentType)
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "notes.txt", sanitizeFileName("../../etc/notes.txt"))
	require.Equal(t, "notes.txt", sanitizeFileName(`C:\temp\notes.txt`))
	require.Equal(t, "file", sanitizeFileName(""))
}
