package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
	"github.com/opensangha/memberhub/internal/store"
)

type invitationsRepo struct {
	db dbtx
}

func (r *invitationsRepo) Create(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (token, email, created_by, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.Token, inv.Email, inv.CreatedBy, inv.ExpiresAt, inv.UsedAt, inv.CreatedAt)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetByToken(ctx context.Context, token string) (domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.GetContext(ctx, &inv, `SELECT * FROM invitations WHERE token = ?`, token)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetActiveByEmail(
	ctx context.Context,
	email string,
	now time.Time,
) (domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.GetContext(ctx, &inv, `
		SELECT * FROM invitations
		WHERE email = ? AND used_at IS NULL AND expires_at > ?
		ORDER BY created_at DESC
		LIMIT 1
	`, email, now.UTC())
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

// MarkUsed is the at-most-once redemption guard. The WHERE clause only
// matches while used_at is NULL, so of any number of concurrent redeemers
// exactly one sees a row change; the rest fall through to the state check.
func (r *invitationsRepo) MarkUsed(ctx context.Context, token string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET used_at = ? WHERE token = ? AND used_at IS NULL
	`, at.UTC(), token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Zero rows: either the token does not exist or it was already used.
	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM invitations WHERE token = ?)`, token)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrAlreadyExists
}
