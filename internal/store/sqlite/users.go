package sqlite

import (
	"context"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users ORDER BY display_name COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash,
			worldly_name, spiritual_name, preferred_name, display_name,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		u.ID, u.Email, u.PasswordHash,
		u.WorldlyName, u.SpiritualName, u.PreferredName, u.DisplayName,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
	`, newHash, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdateNames(
	ctx context.Context,
	userID string,
	names domain.ProfileNames,
	displayName string,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET worldly_name = ?, spiritual_name = ?, preferred_name = ?,
		    display_name = ?, updated_at = ?
		WHERE id = ?
	`, names.WorldlyName, names.SpiritualName, names.PreferredName,
		displayName, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string) error {
	var val *string
	if secret != "" {
		val = &secret
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET mfa_secret = ?, updated_at = ? WHERE id = ?
	`, val, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET mfa_enabled = ?, updated_at = ? WHERE id = ?
	`, at.UTC(), time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET mfa_enabled = NULL, mfa_secret = NULL, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
