package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/opensangha/memberhub/internal/domain"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/pkg/cryptox"
	"github.com/opensangha/memberhub/pkg/idx"
	"github.com/opensangha/memberhub/pkg/jwtx"
	"github.com/opensangha/memberhub/pkg/slogx"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials covers unknown email, passwordless account and
	// wrong password alike; the login surface never says which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMFARequired  = errors.New("totp code required")
	ErrInvalidToken = errors.New("invalid token")
)

type AuthService struct {
	Store store.Store
	Codec jwtx.Codec

	Issuer        string
	AccessTTL     time.Duration
	RefreshLeeway time.Duration

	// Now is injectable for token-lifetime tests; nil means time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshLeeway() time.Duration {
	if s.RefreshLeeway > 0 {
		return s.RefreshLeeway
	}
	return jwtx.DefaultRefreshLeeway
}

// Register creates a member account directly, without an invitation, and
// signs the new member in.
func (s *AuthService) Register(
	ctx context.Context,
	email string,
	password string,
	names domain.ProfileNames,
) (domain.User, string, error) {
	log := slogx.FromContext(ctx)
	now := s.now()
	email = normalizeEmail(email)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, "", err
	}

	user := domain.User{
		ID:            idx.New().String(),
		Email:         email,
		PasswordHash:  &hash,
		WorldlyName:   names.WorldlyName,
		SpiritualName: names.SpiritualName,
		PreferredName: names.PreferredName,
		DisplayName:   domain.DeriveDisplayName(names, emailLocalPart(email)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The unique email index is the conflict arbiter; no pre-check, so two
	// racing registrations resolve to exactly one account.
	if err := s.Store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("registration attempted with taken email")
			return domain.User{}, "", ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	token, err := s.issue(user, now)
	if err != nil {
		log.Error("failed to issue token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("member registered", slog.String("user_id", user.ID))
	return user, token, nil
}

// Login verifies email+password (and the TOTP code when MFA is active) and
// issues a bearer token.
func (s *AuthService) Login(
	ctx context.Context,
	email string,
	password string,
	totpCode string,
) (domain.User, string, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	user, err := s.Store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempted with unknown email")
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if user.PasswordHash == nil {
		log.Warn("login attempted on passwordless account", slog.String("user_id", user.ID))
		return domain.User{}, "", ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, *user.PasswordHash); err != nil {
		log.Warn("login attempted with wrong password", slog.String("user_id", user.ID))
		return domain.User{}, "", ErrInvalidCredentials
	}

	if user.HasMFA() {
		if totpCode == "" {
			return domain.User{}, "", ErrMFARequired
		}
		if !totp.Validate(totpCode, *user.MFASecret) {
			log.Warn("login attempted with invalid totp code", slog.String("user_id", user.ID))
			return domain.User{}, "", ErrInvalidTOTP
		}
	}

	token, err := s.issue(user, now)
	if err != nil {
		log.Error("failed to issue token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("member logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// ResetPassword overwrites the password hash for email. It does not sign the
// member in; they log in with the new password afterwards.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		log.Error("failed to update password", slog.Any("error", err))
		return err
	}

	log.Info("password reset", slog.String("user_id", user.ID))
	return nil
}

// ValidateToken reports whether token is currently acceptable as a bearer
// credential: signature, issuer and expiry all pass with zero leeway.
func (s *AuthService) ValidateToken(token string) (jwtx.Claims, bool) {
	claims, err := s.Codec.Verify(token)
	if err != nil {
		return jwtx.Claims{}, false
	}
	if err := claims.ValidateExpiry(s.now()); err != nil {
		return jwtx.Claims{}, false
	}
	return claims, true
}

// RefreshToken exchanges a signature-valid token for a fresh one. Expiry is
// tolerated within the refresh leeway so a token that just lapsed can still
// be renewed; beyond that the client must log in again.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (string, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	claims, err := s.Codec.Verify(token)
	if err != nil {
		log.Warn("refresh attempted with unverifiable token")
		return "", ErrInvalidToken
	}
	if err := claims.ValidateExpiryWithLeeway(now, s.refreshLeeway()); err != nil {
		log.Warn("refresh attempted past leeway", slog.String("user_id", claims.Subject))
		return "", ErrInvalidToken
	}

	// Re-read the user so the display name in the new token stays current.
	user, err := s.Store.Users().GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidToken
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return "", err
	}

	fresh, err := s.issue(user, now)
	if err != nil {
		log.Error("failed to issue token", slog.Any("error", err))
		return "", err
	}

	log.Debug("token refreshed", slog.String("user_id", user.ID))
	return fresh, nil
}

// IssueFor signs a bearer token for user. Other flows that double as a
// sign-in (invitation completion) use this instead of reimplementing claims.
func (s *AuthService) IssueFor(user domain.User) (string, error) {
	return s.issue(user, s.now())
}

func (s *AuthService) issue(user domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(user.ID, user.DisplayName, s.Issuer, s.accessTTL(), now)
	return s.Codec.Sign(claims)
}

// normalizeEmail canonicalizes an address for storage and lookup. Identity
// is case-insensitive: Ananda@Example.org and ananda@example.org are the
// same member.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailLocalPart is the display-name fallback when all three profile names
// are empty.
func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
