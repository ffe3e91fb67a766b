package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/opensangha/memberhub/internal/domain"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/pkg/slogx"
)

var (
	ErrInvalidTOTP       = errors.New("invalid totp code")
	ErrMFANotEnrolled    = errors.New("mfa not enrolled")
	ErrMFAAlreadyEnabled = errors.New("mfa already enabled")
)

// MFAEnrollment is handed back on enrollment; the URL renders as a QR code
// for authenticator apps.
type MFAEnrollment struct {
	Secret string
	URL    string
}

type MFAService struct {
	Store store.Store

	// Issuer is the name shown in authenticator apps.
	Issuer string

	Now func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Enroll generates a TOTP secret for the member. MFA is not active until the
// member proves possession via Activate.
func (s *MFAService) Enroll(ctx context.Context, userID string) (MFAEnrollment, error) {
	log := slogx.FromContext(ctx)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return MFAEnrollment{}, err
	}
	if user.HasMFA() {
		return MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		log.Error("failed to generate totp key", slog.Any("error", err))
		return MFAEnrollment{}, err
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		log.Error("failed to store totp secret", slog.Any("error", err))
		return MFAEnrollment{}, err
	}

	log.Info("totp enrollment started", slog.String("user_id", userID))
	return MFAEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Activate verifies the first code from the member's authenticator and turns
// MFA on.
func (s *MFAService) Activate(ctx context.Context, userID, code string) error {
	log := slogx.FromContext(ctx)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasMFA() {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnrolled
	}

	if !totp.Validate(code, *user.MFASecret) {
		log.Warn("totp activation failed", slog.String("user_id", userID))
		return ErrInvalidTOTP
	}

	if err := s.Store.Users().EnableMFA(ctx, userID, s.now()); err != nil {
		log.Error("failed to enable mfa", slog.Any("error", err))
		return err
	}

	log.Info("mfa enabled", slog.String("user_id", userID))
	return nil
}

// Disable turns MFA off after verifying a current code.
func (s *MFAService) Disable(ctx context.Context, userID, code string) error {
	log := slogx.FromContext(ctx)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasMFA() {
		return ErrMFANotEnrolled
	}
	if !totp.Validate(code, *user.MFASecret) {
		log.Warn("totp disable failed", slog.String("user_id", userID))
		return ErrInvalidTOTP
	}

	if err := s.Store.Users().DisableMFA(ctx, userID); err != nil {
		log.Error("failed to disable mfa", slog.Any("error", err))
		return err
	}

	log.Info("mfa disabled", slog.String("user_id", userID))
	return nil
}

func (s *MFAService) getUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
