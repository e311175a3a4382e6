package service

import (
	"context"
	"errors"
	"time"

	"github.com/dashmed/dashmed/internal/dto"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/mailer"
	"github.com/dashmed/dashmed/internal/model"
	"github.com/dashmed/dashmed/internal/password"
	"github.com/dashmed/dashmed/internal/repository"
	"github.com/dashmed/dashmed/internal/token"
	"github.com/dashmed/dashmed/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ResetStore is the slice of the reset-token repository the flow needs.
type ResetStore interface {
	Purge(ctx context.Context, email string) error
	Create(ctx context.Context, reset *model.PasswordReset) error
	Exists(ctx context.Context, email, tokenHash string) (bool, error)
	Redeem(ctx context.Context, tokenHash, newPasswordHash string) (repository.RedeemOutcome, error)
}

type PasswordResetService struct {
	doctors  DoctorStore
	resets   ResetStore
	mailer   mailer.Mailer
	resetTTL time.Duration
}

func NewPasswordResetService(doctors DoctorStore, resets ResetStore, m mailer.Mailer, resetTTL time.Duration) *PasswordResetService {
	return &PasswordResetService{
		doctors:  doctors,
		resets:   resets,
		mailer:   m,
		resetTTL: resetTTL,
	}
}

// Request issues a reset link when the email matches an account. It always
// succeeds from the caller's point of view: an unknown address, and even a
// mail delivery failure, are logged and swallowed so the response never
// reveals whether the account exists.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	doctor, err := s.doctors.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.GetLogger().Info("Password reset requested for unknown email",
				zap.String("email", email))
			return nil
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Earlier tokens for this address become dead the moment a new one is
	// issued; expired rows of other accounts are swept opportunistically.
	if err := s.resets.Purge(ctx, doctor.Email); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	rawToken, err := token.New()
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	reset := &model.PasswordReset{
		Email:     doctor.Email,
		TokenHash: token.HashSHA256(rawToken),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.mailer.SendPasswordReset(doctor.Email, doctor.DisplayName(), rawToken); err != nil {
		logger.GetLogger().Error("Password reset mail failed",
			zap.String("email", doctor.Email),
			zap.Error(err))
		return nil
	}

	logger.LogAuth(doctor.Email, "password_reset_requested", true)
	return nil
}

// Validate reports whether the email+token pair names a live reset link.
// Used to decide whether to render the reset form at all.
func (s *PasswordResetService) Validate(ctx context.Context, email, rawToken string) (bool, error) {
	if email == "" || rawToken == "" {
		return false, nil
	}
	ok, err := s.resets.Exists(ctx, email, token.HashSHA256(rawToken))
	if err != nil {
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return ok, nil
}

// Reset redeems the token and installs the new password. The repository
// runs the redemption transactionally, so a concurrent double submit of
// the same link updates the password exactly once.
func (s *PasswordResetService) Reset(ctx context.Context, form dto.ResetPasswordForm) error {
	if form.Password != form.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}
	if !password.Validate(form.Password) {
		return apperrors.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	outcome, err := s.resets.Redeem(ctx, token.HashSHA256(form.Token), string(hash))
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	switch outcome {
	case repository.RedeemOK:
		logger.LogAuth(form.Email, "password_reset", true)
		return nil
	default:
		logger.LogAuth(form.Email, "password_reset", false)
		return apperrors.ErrInvalidToken
	}
}
