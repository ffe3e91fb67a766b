package sqlite

import (
	"context"

	"github.com/opensangha/memberhub/internal/domain"
)

type uploadsRepo struct {
	db dbtx
}

func (r *uploadsRepo) Create(ctx context.Context, u domain.Upload) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO uploads (id, owner_id, file_name, content_type, size_bytes, blob_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.OwnerID, u.FileName, u.ContentType, u.SizeBytes, u.BlobKey, u.CreatedAt)
	return mapConstraint(err)
}

func (r *uploadsRepo) GetByID(ctx context.Context, id string) (domain.Upload, error) {
	var u domain.Upload
	err := r.db.GetContext(ctx, &u, `SELECT * FROM uploads WHERE id = ?`, id)
	if err != nil {
		return domain.Upload{}, mapNotFound(err)
	}
	return u, nil
}

func (r *uploadsRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Upload, error) {
	var ups []domain.Upload
	err := r.db.SelectContext(ctx, &ups, `
		SELECT * FROM uploads WHERE owner_id = ? ORDER BY created_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return ups, nil
}
