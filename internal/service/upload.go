package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/pkg/blob"
	"github.com/opensangha/memberhub/pkg/idx"
	"github.com/opensangha/memberhub/pkg/slogx"
)

// DefaultLinkTTL is how long a signed download link stays valid.
const DefaultLinkTTL = 15 * time.Minute

var (
	ErrUploadNotFound = errors.New("upload not found")
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
)

type UploadService struct {
	Store store.Store
	Blobs blob.Store

	// MaxBytes caps a single upload; zero means no cap.
	MaxBytes int64

	// LinkTTL overrides DefaultLinkTTL when positive.
	LinkTTL time.Duration

	Now func() time.Time
}

func (s *UploadService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *UploadService) linkTTL() time.Duration {
	if s.LinkTTL > 0 {
		return s.LinkTTL
	}
	return DefaultLinkTTL
}

// Save streams an upload into the blob store and records its metadata. The
// blob is removed again if the metadata insert fails, so rows and blobs
// cannot drift apart.
func (s *UploadService) Save(
	ctx context.Context,
	ownerID string,
	fileName string,
	contentType string,
	r io.Reader,
) (domain.Upload, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Blob keys are flat; the ULID prefix keeps them unique per upload.
	id := idx.New().String()
	key := id + "-" + sanitizeFileName(fileName)

	// One extra byte past the cap distinguishes "exactly at the limit" from
	// "over it" without buffering the whole body.
	src := r
	if s.MaxBytes > 0 {
		src = io.LimitReader(r, s.MaxBytes+1)
	}

	size, err := s.Blobs.Put(ctx, key, src)
	if err != nil {
		log.Error("failed to store blob", slog.Any("error", err))
		return domain.Upload{}, err
	}
	if s.MaxBytes > 0 && size > s.MaxBytes {
		_ = s.Blobs.Delete(ctx, key)
		log.Warn("upload rejected for size",
			slog.String("owner_id", ownerID),
			slog.Int64("max_bytes", s.MaxBytes),
		)
		return domain.Upload{}, ErrUploadTooLarge
	}

	up := domain.Upload{
		ID:          id,
		OwnerID:     ownerID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
		BlobKey:     key,
		CreatedAt:   now,
	}
	if err := s.Store.Uploads().Create(ctx, up); err != nil {
		_ = s.Blobs.Delete(ctx, key)
		log.Error("failed to record upload", slog.Any("error", err))
		return domain.Upload{}, err
	}

	log.Info("upload stored",
		slog.String("upload_id", id),
		slog.String("owner_id", ownerID),
		slog.Int64("size_bytes", size),
	)
	return up, nil
}

// ListForOwner returns the caller's uploads, newest first.
func (s *UploadService) ListForOwner(ctx context.Context, ownerID string) ([]domain.Upload, error) {
	return s.Store.Uploads().ListByOwner(ctx, ownerID)
}

// SignedLink resolves an upload to a time-limited download path.
func (s *UploadService) SignedLink(ctx context.Context, id string) (string, time.Time, error) {
	up, err := s.Store.Uploads().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", time.Time{}, ErrUploadNotFound
		}
		return "", time.Time{}, err
	}

	expiresAt := s.now().Add(s.linkTTL())
	return s.Blobs.SignedPath(up.BlobKey, expiresAt), expiresAt, nil
}

// sanitizeFileName strips any path structure from a client-supplied name so
// it can safely end up in a blob key.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}
