package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/opensangha/memberhub/pkg/cryptox"
)

// FSStore keeps blobs on the local filesystem and signs download paths with
// an HMAC key. Keys are ULID-based and generated by the caller, so a flat
// directory is fine at this scale.
type FSStore struct {
	root    string
	signKey []byte
}

// NewFSStore creates the root directory if needed. signKey must be at least
// 32 bytes.
func NewFSStore(root string, signKey []byte) (*FSStore, error) {
	if len(signKey) < 32 {
		return nil, fmt.Errorf("blob: signing key must be at least 32 bytes, got %d", len(signKey))
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("blob: creating root: %w", err)
	}
	return &FSStore{root: root, signKey: signKey}, nil
}

func (s *FSStore) path(key string) (string, error) {
	// Keys are generated server-side, but reject traversal anyway since the
	// key round-trips through a URL.
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", ErrNotFound
	}
	return filepath.Join(s.root, key), nil
}

func (s *FSStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	p, err := s.path(key)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("blob: writing %s: %w", key, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(p)
		return 0, fmt.Errorf("blob: writing %s: %w", key, err)
	}
	return n, nil
}

func (s *FSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob: opening %s: %w", key, err)
	}
	return f, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob: deleting %s: %w", key, err)
	}
	return nil
}

// SignedPath returns "/v1/files/{key}?exp=...&sig=..." valid until expiresAt.
func (s *FSStore) SignedPath(key string, expiresAt time.Time) string {
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	sig := cryptox.SignMessage(s.signKey, key+"|"+exp)
	return "/v1/files/" + key + "?exp=" + exp + "&sig=" + sig
}

// VerifyPath validates the signature before the expiry so a forged exp field
// cannot produce an "expired" oracle for otherwise-invalid links.
func (s *FSStore) VerifyPath(key, exp, sig string, now time.Time) error {
	if !cryptox.VerifyMessage(s.signKey, key+"|"+exp, sig) {
		return ErrBadSignature
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if now.After(time.Unix(unix, 0)) {
		return ErrLinkExpired
	}
	return nil
}
