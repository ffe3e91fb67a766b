// Package blob abstracts where uploaded file bytes live. The server only
// hands out time-limited signed URLs; raw keys are never exposed unsigned.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("blob: not found")

// Store persists opaque byte blobs under caller-chosen keys.
type Store interface {
	// Put writes the blob, overwriting any existing content at key.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader for the blob, or ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// SignedPath returns a relative URL path granting access to the blob
	// until expiry. VerifyPath checks such a path's signature and expiry.
	SignedPath(key string, expiresAt time.Time) string
	VerifyPath(key, exp, sig string, now time.Time) error
}

var (
	ErrBadSignature = errors.New("blob: invalid signature")
	ErrLinkExpired  = errors.New("blob: link expired")
)
