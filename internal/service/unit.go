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
	ErrUnitNotFound  = errors.New("unit not found")
	ErrUnitNameTaken = errors.New("unit name already taken")
	ErrNotMember     = errors.New("not a member of this unit")
)

type UnitService struct {
	Store store.Store

	Now func() time.Time
}

func (s *UnitService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create founds a unit with the caller as its leader. The leader joins the
// member list immediately.
func (s *UnitService) Create(
	ctx context.Context,
	leaderID string,
	name string,
	description string,
) (domain.Unit, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	unit := domain.Unit{
		ID:          idx.New().String(),
		Name:        name,
		Description: description,
		LeaderID:    leaderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Units().Create(ctx, unit); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUnitNameTaken
			}
			return err
		}
		return tx.Units().AddMember(ctx, unit.ID, leaderID, now)
	})
	if err != nil {
		if !errors.Is(err, ErrUnitNameTaken) {
			log.Error("failed to create unit", slog.Any("error", err))
		}
		return domain.Unit{}, err
	}

	log.Info("unit created",
		slog.String("unit_id", unit.ID),
		slog.String("leader_id", leaderID),
	)
	return unit, nil
}

// List returns all units ordered by name.
func (s *UnitService) List(ctx context.Context) ([]domain.Unit, error) {
	return s.Store.Units().List(ctx)
}

// Get returns a unit with its current members.
func (s *UnitService) Get(ctx context.Context, id string) (domain.Unit, []domain.User, error) {
	unit, err := s.Store.Units().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Unit{}, nil, ErrUnitNotFound
		}
		return domain.Unit{}, nil, err
	}

	members, err := s.Store.Units().ListMembers(ctx, id)
	if err != nil {
		return domain.Unit{}, nil, err
	}
	return unit, members, nil
}

// Join adds the caller to a unit. Joining twice is a no-op.
func (s *UnitService) Join(ctx context.Context, unitID, userID string) error {
	log := slogx.FromContext(ctx)

	if _, err := s.Store.Units().GetByID(ctx, unitID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnitNotFound
		}
		return err
	}

	if err := s.Store.Units().AddMember(ctx, unitID, userID, s.now()); err != nil {
		log.Error("failed to join unit", slog.Any("error", err))
		return err
	}

	log.Info("unit joined", slog.String("unit_id", unitID), slog.String("user_id", userID))
	return nil
}

// Leave removes the caller from a unit.
func (s *UnitService) Leave(ctx context.Context, unitID, userID string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Units().RemoveMember(ctx, unitID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		}
		log.Error("failed to leave unit", slog.Any("error", err))
		return err
	}

	log.Info("unit left", slog.String("unit_id", unitID), slog.String("user_id", userID))
	return nil
}
