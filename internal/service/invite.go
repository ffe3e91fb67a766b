package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opensangha/memberhub/internal/domain"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/pkg/cryptox"
	"github.com/opensangha/memberhub/pkg/idx"
	"github.com/opensangha/memberhub/pkg/slogx"
)

var (
	ErrInviteNotFound = errors.New("invitation not found")
	ErrInviteUsed     = errors.New("invitation already used")
	ErrInviteExpired  = errors.New("invitation expired")
)

type InviteService struct {
	Store store.Store

	// Now is injectable for expiry-boundary tests; nil means time.Now.
	Now func() time.Time
}

func (s *InviteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create mints a magic-link invitation for email on behalf of inviterID.
// Re-inviting an address with an active invitation hands back the original
// row unchanged, so the same link can be re-sent. The bool reports whether a
// new invitation was minted.
func (s *InviteService) Create(
	ctx context.Context,
	inviterID string,
	email string,
) (domain.Invitation, bool, error) {
	log := slogx.FromContext(ctx)
	now := s.now()
	email = normalizeEmail(email)

	// 1. A registered address cannot be invited.
	_, err := s.Store.Users().GetByEmail(ctx, email)
	if err == nil {
		log.Warn("invitation attempted for registered email")
		return domain.Invitation{}, false, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check email", slog.Any("error", err))
		return domain.Invitation{}, false, err
	}

	// 2. An active invitation is returned verbatim rather than replaced.
	existing, err := s.Store.Invitations().GetActiveByEmail(ctx, email, now)
	if err == nil {
		log.Debug("active invitation re-returned",
			slog.String("created_by", existing.CreatedBy),
			slog.Time("expires_at", existing.ExpiresAt),
		)
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check active invitation", slog.Any("error", err))
		return domain.Invitation{}, false, err
	}

	// 3. Mint a fresh token.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Invitation{}, false, err
	}

	inv := domain.Invitation{
		Token:     token,
		Email:     email,
		CreatedBy: inviterID,
		ExpiresAt: now.Add(domain.InvitationTTL),
		CreatedAt: now,
	}
	if err := s.Store.Invitations().Create(ctx, inv); err != nil {
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.Invitation{}, false, err
	}

	log.Info("invitation created",
		slog.String("created_by", inviterID),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return inv, true, nil
}

// Info resolves a token to its invitation and inviter for the public landing
// page. State checks run in a fixed order: missing, then used, then expired,
// so a used-and-lapsed link still reads "already used".
func (s *InviteService) Info(ctx context.Context, token string) (domain.Invitation, domain.User, error) {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invitations().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, domain.User{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Invitation{}, domain.User{}, err
	}
	if inv.Used() {
		return domain.Invitation{}, domain.User{}, ErrInviteUsed
	}
	if inv.Expired(s.now()) {
		return domain.Invitation{}, domain.User{}, ErrInviteExpired
	}

	inviter, err := s.Store.Users().GetByID(ctx, inv.CreatedBy)
	if err != nil {
		log.Error("failed to fetch inviter", slog.Any("error", err))
		return domain.Invitation{}, domain.User{}, err
	}
	return inv, inviter, nil
}

// Complete redeems a magic link and creates the member account. The redeem
// itself is the store's conditional used_at update, executed in the same
// transaction as the user insert, so two racing Completes resolve to exactly
// one account.
func (s *InviteService) Complete(
	ctx context.Context,
	token string,
	password string,
	names domain.ProfileNames,
) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	// 1. Look the invitation up and judge its state (missing, used, expired).
	inv, err := s.Store.Invitations().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("completion attempted with unknown token")
			return domain.User{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.User{}, err
	}
	if inv.Used() {
		log.Warn("completion attempted with used invitation")
		return domain.User{}, ErrInviteUsed
	}
	if inv.Expired(now) {
		log.Warn("completion attempted with expired invitation",
			slog.Time("expires_at", inv.ExpiresAt),
		)
		return domain.User{}, ErrInviteExpired
	}

	// 2. Hash the password before opening the transaction.
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:            idx.New().String(),
		Email:         inv.Email,
		PasswordHash:  &hash,
		WorldlyName:   names.WorldlyName,
		SpiritualName: names.SpiritualName,
		PreferredName: names.PreferredName,
		DisplayName:   domain.DeriveDisplayName(names, emailLocalPart(inv.Email)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// 3. Redeem and create atomically. MarkUsed only flips used_at while it
	// is still NULL, so a racing redeemer loses there with ErrInviteUsed
	// before any email conflict is consulted. An address that registered
	// through another path meanwhile surfaces as the user-insert conflict
	// and rolls the redemption back, leaving the link intact.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().MarkUsed(ctx, token, now); err != nil {
			switch {
			case errors.Is(err, store.ErrAlreadyExists):
				return ErrInviteUsed
			case errors.Is(err, store.ErrNotFound):
				return ErrInviteNotFound
			}
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInviteUsed) {
			log.Warn("completion lost redemption race")
		} else if !errors.Is(err, ErrInviteNotFound) && !errors.Is(err, ErrEmailTaken) {
			log.Error("failed to redeem invitation", slog.Any("error", err))
		}
		return domain.User{}, err
	}

	log.Info("member registered via invitation",
		slog.String("user_id", user.ID),
		slog.String("invited_by", inv.CreatedBy),
	)
	return user, nil
}
