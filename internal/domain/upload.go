package domain

import "time"

// Upload is the metadata row for a file a member stored. The bytes live in
// the blob store under BlobKey.
type Upload struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	FileName    string    `db:"file_name"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	BlobKey     string    `db:"blob_key"`
	CreatedAt   time.Time `db:"created_at"`
}
