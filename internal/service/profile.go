package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dashmed/dashmed/internal/dto"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/mailer"
	"github.com/dashmed/dashmed/internal/model"
	"github.com/dashmed/dashmed/internal/password"
	"github.com/dashmed/dashmed/internal/token"
	"github.com/dashmed/dashmed/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService struct {
	doctors         DoctorStore
	mailer          mailer.Mailer
	verificationTTL time.Duration
}

func NewProfileService(doctors DoctorStore, m mailer.Mailer, verificationTTL time.Duration) *ProfileService {
	return &ProfileService{
		doctors:         doctors,
		mailer:          m,
		verificationTTL: verificationTTL,
	}
}

func (s *ProfileService) Get(ctx context.Context, doctorID uint) (*model.Doctor, error) {
	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDoctorNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return doctor, nil
}

// ChangePassword verifies the current password before installing the new
// one. The new password goes through the same complexity policy as at
// registration.
func (s *ProfileService) ChangePassword(ctx context.Context, doctorID uint, form dto.ChangePasswordForm) error {
	doctor, err := s.Get(ctx, doctorID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte(form.CurrentPassword)); err != nil {
		logger.LogAuth(doctor.Email, "change_password", false)
		return apperrors.ErrIncorrectPassword
	}
	if form.NewPassword != form.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}
	if !password.Validate(form.NewPassword) {
		return apperrors.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.doctors.UpdatePassword(ctx, doctor.ID, string(hash)); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.LogAuth(doctor.Email, "change_password", true)
	return nil
}

// ChangeEmail moves the account to a new address after re-checking the
// password. The account drops back to unverified and a fresh activation
// mail goes to the new address; both addresses get a change notice.
func (s *ProfileService) ChangeEmail(ctx context.Context, doctorID uint, form dto.ChangeEmailForm) error {
	doctor, err := s.Get(ctx, doctorID)
	if err != nil {
		return err
	}

	if !strings.EqualFold(form.NewEmail, form.ConfirmEmail) {
		return apperrors.ErrEmailMismatch
	}
	if strings.EqualFold(form.NewEmail, doctor.Email) {
		return apperrors.ErrSameEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte(form.Password)); err != nil {
		logger.LogAuth(doctor.Email, "change_email", false)
		return apperrors.ErrIncorrectPassword
	}

	exists, err := s.doctors.EmailExists(ctx, form.NewEmail)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		return apperrors.ErrEmailExists
	}

	oldEmail := doctor.Email
	if err := s.doctors.UpdateEmail(ctx, doctor.ID, form.NewEmail); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrEmailExists
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	verifyToken, err := token.New()
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	expires := time.Now().Add(s.verificationTTL)
	if err := s.doctors.SetVerificationToken(ctx, form.NewEmail, verifyToken, expires); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.LogAuth(oldEmail, "change_email", true)

	if err := s.mailer.SendEmailChangeNotice(oldEmail, form.NewEmail, doctor.DisplayName()); err != nil {
		logger.GetLogger().Error("Email change notice failed",
			zap.String("old_email", oldEmail),
			zap.String("new_email", form.NewEmail),
			zap.Error(err))
	}
	if err := s.mailer.SendVerification(form.NewEmail, doctor.DisplayName(), verifyToken); err != nil {
		return apperrors.WrapError(apperrors.ErrMailFailed, err)
	}

	return nil
}
