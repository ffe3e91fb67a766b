package sqlite

import (
	"context"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
)

type unitsRepo struct {
	db dbtx
}

func (r *unitsRepo) Create(ctx context.Context, u domain.Unit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO units (id, name, description, leader_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Description, u.LeaderID, u.CreatedAt, u.UpdatedAt)
	return mapConstraint(err)
}

func (r *unitsRepo) GetByID(ctx context.Context, id string) (domain.Unit, error) {
	var u domain.Unit
	err := r.db.GetContext(ctx, &u, `SELECT * FROM units WHERE id = ?`, id)
	if err != nil {
		return domain.Unit{}, mapNotFound(err)
	}
	return u, nil
}

func (r *unitsRepo) List(ctx context.Context) ([]domain.Unit, error) {
	var units []domain.Unit
	err := r.db.SelectContext(ctx, &units, `
		SELECT * FROM units ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	return units, nil
}

// AddMember is idempotent; re-adding an existing member is a no-op.
func (r *unitsRepo) AddMember(ctx context.Context, unitID, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO unit_members (unit_id, user_id, joined_at)
		VALUES (?, ?, ?)
		ON CONFLICT (unit_id, user_id) DO NOTHING
	`, unitID, userID, at.UTC())
	return err
}

func (r *unitsRepo) RemoveMember(ctx context.Context, unitID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM unit_members WHERE unit_id = ? AND user_id = ?
	`, unitID, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *unitsRepo) ListMembers(ctx context.Context, unitID string) ([]domain.User, error) {
	var users []domain.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT u.* FROM users u
		JOIN unit_members m ON m.user_id = u.id
		WHERE m.unit_id = ?
		ORDER BY u.display_name COLLATE NOCASE, u.id
	`, unitID)
	if err != nil {
		return nil, err
	}
	return users, nil
}
