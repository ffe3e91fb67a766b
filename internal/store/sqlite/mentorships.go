package sqlite

import (
	"context"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
)

type mentorshipsRepo struct {
	db dbtx
}

func (r *mentorshipsRepo) Create(ctx context.Context, m domain.Mentorship) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mentorships (id, mentor_id, mentee_id, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.MentorID, m.MenteeID, m.StartedAt, m.EndedAt)
	return mapConstraint(err)
}

func (r *mentorshipsRepo) GetByID(ctx context.Context, id string) (domain.Mentorship, error) {
	var m domain.Mentorship
	err := r.db.GetContext(ctx, &m, `SELECT * FROM mentorships WHERE id = ?`, id)
	if err != nil {
		return domain.Mentorship{}, mapNotFound(err)
	}
	return m, nil
}

func (r *mentorshipsRepo) GetOpenByMentee(ctx context.Context, menteeID string) (domain.Mentorship, error) {
	var m domain.Mentorship
	err := r.db.GetContext(ctx, &m, `
		SELECT * FROM mentorships
		WHERE mentee_id = ? AND ended_at IS NULL
		LIMIT 1
	`, menteeID)
	if err != nil {
		return domain.Mentorship{}, mapNotFound(err)
	}
	return m, nil
}

func (r *mentorshipsRepo) ListForUser(ctx context.Context, userID string) ([]domain.Mentorship, error) {
	var ms []domain.Mentorship
	err := r.db.SelectContext(ctx, &ms, `
		SELECT * FROM mentorships
		WHERE mentor_id = ? OR mentee_id = ?
		ORDER BY started_at DESC, id
	`, userID, userID)
	if err != nil {
		return nil, err
	}
	return ms, nil
}

// End closes an open mentorship. Already-ended rows are left untouched so
// the recorded end time never moves.
func (r *mentorshipsRepo) End(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE mentorships SET ended_at = ? WHERE id = ? AND ended_at IS NULL
	`, at.UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
