package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/pkg/idx"
	"github.com/opensangha/memberhub/pkg/slogx"
)

var (
	ErrMentorshipNotFound = errors.New("mentorship not found")
	ErrMenteeHasMentor    = errors.New("mentee already has an open mentorship")
	ErrSelfMentorship     = errors.New("cannot mentor yourself")
	ErrNotParticipant     = errors.New("not a participant in this mentorship")
)

type MentorshipService struct {
	Store store.Store

	Now func() time.Time
}

func (s *MentorshipService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start opens a pairing with the caller as mentor. The partial unique index
// on open pairings arbitrates concurrent starts for the same mentee.
func (s *MentorshipService) Start(
	ctx context.Context,
	mentorID string,
	menteeID string,
) (domain.Mentorship, error) {
	log := slogx.FromContext(ctx)

	if mentorID == menteeID {
		return domain.Mentorship{}, ErrSelfMentorship
	}

	if _, err := s.Store.Users().GetByID(ctx, menteeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Mentorship{}, ErrUserNotFound
		}
		return domain.Mentorship{}, err
	}

	m := domain.Mentorship{
		ID:        idx.New().String(),
		MentorID:  mentorID,
		MenteeID:  menteeID,
		StartedAt: s.now(),
	}
	if err := s.Store.Mentorships().Create(ctx, m); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Mentorship{}, ErrMenteeHasMentor
		}
		log.Error("failed to start mentorship", slog.Any("error", err))
		return domain.Mentorship{}, err
	}

	log.Info("mentorship started",
		slog.String("mentorship_id", m.ID),
		slog.String("mentor_id", mentorID),
		slog.String("mentee_id", menteeID),
	)
	return m, nil
}

// ListForUser returns the caller's pairings, as mentor and as mentee.
func (s *MentorshipService) ListForUser(ctx context.Context, userID string) ([]domain.Mentorship, error) {
	return s.Store.Mentorships().ListForUser(ctx, userID)
}

// End closes an open pairing. Only its mentor or mentee may end it.
func (s *MentorshipService) End(ctx context.Context, id, requesterID string) error {
	log := slogx.FromContext(ctx)

	m, err := s.Store.Mentorships().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMentorshipNotFound
		}
		return err
	}
	if requesterID != m.MentorID && requesterID != m.MenteeID {
		log.Warn("mentorship end attempted by outsider",
			slog.String("mentorship_id", id),
			slog.String("user_id", requesterID),
		)
		return ErrNotParticipant
	}

	// Already-ended rows report not found; the recorded end time never moves.
	if err := s.Store.Mentorships().End(ctx, id, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMentorshipNotFound
		}
		log.Error("failed to end mentorship", slog.Any("error", err))
		return err
	}

	log.Info("mentorship ended", slog.String("mentorship_id", id))
	return nil
}
