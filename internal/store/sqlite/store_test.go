package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opensangha/memberhub/internal/domain"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	u := domain.User{
		ID:          idx.New().String(),
		Email:       email,
		DisplayName: email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUsersUniqueEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "ananda@example.org")

	dup := domain.User{
		ID:        idx.New().String(),
		Email:     "ananda@example.org",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.Users().Create(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersGetByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := seedUser(t, s, "kassapa@example.org")

	got, err := s.Users().GetByEmail(ctx, "kassapa@example.org")
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)

	_, err = s.Users().GetByEmail(ctx, "nobody@example.org")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersUpdateNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "upali@example.org")

	names := domain.ProfileNames{WorldlyName: "Uwe Pahl", SpiritualName: "Upali"}
	require.NoError(t, s.Users().UpdateNames(ctx, u.ID, names, "Upali"))

	got, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Uwe Pahl", got.WorldlyName)
	require.Equal(t, "Upali", got.SpiritualName)
	require.Equal(t, "Upali", got.DisplayName)

	err = s.Users().UpdateNames(ctx, "missing", names, "Upali")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvitationsMarkUsedOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inviter := seedUser(t, s, "admin@example.org")
	now := time.Now().UTC().Truncate(time.Second)

	inv := domain.Invitation{
		Token:     "tok-once",
		Email:     "new@example.org",
		CreatedBy: inviter.ID,
		ExpiresAt: now.Add(domain.InvitationTTL),
		CreatedAt: now,
	}
	require.NoError(t, s.Invitations().Create(ctx, inv))

	// First redemption flips used_at.
	require.NoError(t, s.Invitations().MarkUsed(ctx, "tok-once", now))

	got, err := s.Invitations().GetByToken(ctx, "tok-once")
	require.NoError(t, err)
	require.True(t, got.Used())

	// Second redemption loses the race.
	err = s.Invitations().MarkUsed(ctx, "tok-once", now.Add(time.Minute))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// The recorded time never moves.
	again, err := s.Invitations().GetByToken(ctx, "tok-once")
	require.NoError(t, err)
	require.Equal(t, got.UsedAt.Unix(), again.UsedAt.Unix())

	err = s.Invitations().MarkUsed(ctx, "no-such-token", now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvitationsGetActiveByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inviter := seedUser(t, s, "admin@example.org")
	now := time.Now().UTC().Truncate(time.Second)

	expired := domain.Invitation{
		Token:     "tok-expired",
		Email:     "new@example.org",
		CreatedBy: inviter.ID,
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-8 * 24 * time.Hour),
	}
	require.NoError(t, s.Invitations().Create(ctx, expired))

	_, err := s.Invitations().GetActiveByEmail(ctx, "new@example.org", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	active := domain.Invitation{
		Token:     "tok-active",
		Email:     "new@example.org",
		CreatedBy: inviter.ID,
		ExpiresAt: now.Add(domain.InvitationTTL),
		CreatedAt: now,
	}
	require.NoError(t, s.Invitations().Create(ctx, active))

	got, err := s.Invitations().GetActiveByEmail(ctx, "new@example.org", now)
	require.NoError(t, err)
	require.Equal(t, "tok-active", got.Token)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := domain.User{
		ID:        idx.New().String(),
		Email:     "tx@example.org",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().Create(ctx, boom); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Users().GetByEmail(ctx, "tx@example.org")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUnitsMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	leader := seedUser(t, s, "leader@example.org")
	member := seedUser(t, s, "member@example.org")
	now := time.Now().UTC().Truncate(time.Second)

	unit := domain.Unit{
		ID:        idx.New().String(),
		Name:      "City Sangha",
		LeaderID:  leader.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Units().Create(ctx, unit))

	dup := unit
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Units().Create(ctx, dup), store.ErrAlreadyExists)

	require.NoError(t, s.Units().AddMember(ctx, unit.ID, member.ID, now))
	// Re-joining is a no-op, not an error.
	require.NoError(t, s.Units().AddMember(ctx, unit.ID, member.ID, now.Add(time.Hour)))

	members, err := s.Units().ListMembers(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, member.ID, members[0].ID)

	require.NoError(t, s.Units().RemoveMember(ctx, unit.ID, member.ID))
	require.ErrorIs(t, s.Units().RemoveMember(ctx, unit.ID, member.ID), store.ErrNotFound)
}

func TestMentorshipsEndOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mentor := seedUser(t, s, "mentor@example.org")
	mentee := seedUser(t, s, "mentee@example.org")
	now := time.Now().UTC().Truncate(time.Second)

	m := domain.Mentorship{
		ID:        idx.New().String(),
		MentorID:  mentor.ID,
		MenteeID:  mentee.ID,
		StartedAt: now,
	}
	require.NoError(t, s.Mentorships().Create(ctx, m))

	open, err := s.Mentorships().GetOpenByMentee(ctx, mentee.ID)
	require.NoError(t, err)
	require.Equal(t, m.ID, open.ID)

	require.NoError(t, s.Mentorships().End(ctx, m.ID, now.Add(time.Hour)))
	require.ErrorIs(t, s.Mentorships().End(ctx, m.ID, now.Add(2*time.Hour)), store.ErrNotFound)

	_, err = s.Mentorships().GetOpenByMentee(ctx, mentee.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	both, err := s.Mentorships().ListForUser(ctx, mentor.ID)
	require.NoError(t, err)
	require.Len(t, both, 1)
}

func TestUploadsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.org")
	now := time.Now().UTC().Truncate(time.Second)

	up := domain.Upload{
		ID:          idx.New().String(),
		OwnerID:     owner.ID,
		FileName:    "dana-receipt.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		BlobKey:     "uploads/dana-receipt.pdf",
		CreatedAt:   now,
	}
	require.NoError(t, s.Uploads().Create(ctx, up))

	got, err := s.Uploads().GetByID(ctx, up.ID)
	require.NoError(t, err)
	require.Equal(t, up.BlobKey, got.BlobKey)

	list, err := s.Uploads().ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
