package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/pkg/slogx"
)

type UserService struct {
	Store store.Store

	Now func() time.Time
}

// Get returns a member by id.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// List returns the member directory ordered by display name.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().List(ctx)
}

// UpdateNames replaces the member's profile names and re-derives the display
// name under the same precedence used at registration.
func (s *UserService) UpdateNames(
	ctx context.Context,
	userID string,
	names domain.ProfileNames,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Get(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	display := domain.DeriveDisplayName(names, emailLocalPart(user.Email))
	if err := s.Store.Users().UpdateNames(ctx, userID, names, display); err != nil {
		log.Error("failed to update names", slog.Any("error", err))
		return domain.User{}, err
	}

	user.WorldlyName = names.WorldlyName
	user.SpiritualName = names.SpiritualName
	user.PreferredName = names.PreferredName
	user.DisplayName = display

	log.Info("profile names updated", slog.String("user_id", userID))
	return user, nil
}
