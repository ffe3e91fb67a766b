package sqlite

import (
	"github.com/jmoiron/sqlx"
	"github.com/opensangha/memberhub/internal/store"
)

// txStore exposes the repositories bound to a live transaction.
type txStore struct {
	tx *sqlx.Tx
}

func (t *txStore) Users() store.Users             { return &usersRepo{db: t.tx} }
func (t *txStore) Invitations() store.Invitations { return &invitationsRepo{db: t.tx} }
func (t *txStore) Units() store.Units             { return &unitsRepo{db: t.tx} }
func (t *txStore) Mentorships() store.Mentorships { return &mentorshipsRepo{db: t.tx} }
func (t *txStore) Uploads() store.Uploads         { return &uploadsRepo{db: t.tx} }
