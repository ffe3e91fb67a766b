package store

import (
	"context"
	"errors"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. Sub-repositories keep concerns tidy and make transactional
// scoping explicit: a Tx exposes the same sub-repositories bound to the
// transaction.
type Store interface {
	Users() Users
	Invitations() Invitations
	Units() Units
	Mentorships() Mentorships
	Uploads() Uploads

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed. Multi-step writes
	// that must be atomic (invitation redemption) go through here.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Users() Users
	Invitations() Invitations
	Units() Units
	Mentorships() Mentorships
	Uploads() Uploads
}

type Users interface {
	// GetByID returns a user by id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByEmail looks a user up by (lowercased) email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// List returns all users ordered by display name.
	List(ctx context.Context) ([]domain.User, error)

	// Create inserts a new user. A duplicate email yields ErrAlreadyExists.
	Create(ctx context.Context, u domain.User) error

	// UpdatePasswordHash overwrites the password hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// UpdateNames mutates the profile names and the derived display name.
	UpdateNames(ctx context.Context, userID string, names domain.ProfileNames, displayName string) error

	// UpdateMFASecret stores the (not yet activated) TOTP secret; empty
	// clears it.
	UpdateMFASecret(ctx context.Context, userID, secret string) error

	// EnableMFA stamps mfa_enabled. DisableMFA clears both secret and stamp.
	EnableMFA(ctx context.Context, userID string, at time.Time) error
	DisableMFA(ctx context.Context, userID string) error
}

type Invitations interface {
	// Create inserts a new invitation keyed by its token.
	Create(ctx context.Context, inv domain.Invitation) error

	// GetByToken returns the invitation regardless of state, or ErrNotFound.
	// State (used/expired) is judged by the caller so the error taxonomy
	// stays in one place.
	GetByToken(ctx context.Context, token string) (domain.Invitation, error)

	// GetActiveByEmail returns the unused, unexpired invitation for email,
	// or ErrNotFound. At most one such row exists at a time.
	GetActiveByEmail(ctx context.Context, email string, now time.Time) (domain.Invitation, error)

	// MarkUsed performs the guarded one-time transition: it sets used_at
	// only if it is still NULL. Returns ErrNotFound when the token does not
	// exist and ErrAlreadyExists when used_at was already set. This
	// conditional write is the serialization point for concurrent
	// redemptions.
	MarkUsed(ctx context.Context, token string, at time.Time) error
}

type Units interface {
	Create(ctx context.Context, u domain.Unit) error
	GetByID(ctx context.Context, id string) (domain.Unit, error)
	List(ctx context.Context) ([]domain.Unit, error)

	// AddMember is idempotent: re-joining is not an error.
	AddMember(ctx context.Context, unitID, userID string, at time.Time) error
	RemoveMember(ctx context.Context, unitID, userID string) error
	ListMembers(ctx context.Context, unitID string) ([]domain.User, error)
}

type Mentorships interface {
	Create(ctx context.Context, m domain.Mentorship) error
	GetByID(ctx context.Context, id string) (domain.Mentorship, error)

	// GetOpenByMentee returns the mentee's open pairing, or ErrNotFound.
	GetOpenByMentee(ctx context.Context, menteeID string) (domain.Mentorship, error)

	// ListForUser returns pairings where the user is mentor or mentee,
	// newest first.
	ListForUser(ctx context.Context, userID string) ([]domain.Mentorship, error)

	// End stamps ended_at; ending an already-ended pairing is ErrNotFound.
	End(ctx context.Context, id string, at time.Time) error
}

type Uploads interface {
	Create(ctx context.Context, u domain.Upload) error
	GetByID(ctx context.Context, id string) (domain.Upload, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Upload, error)
}
