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
	"github.com/dashmed/dashmed/internal/token"
	"github.com/dashmed/dashmed/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DoctorStore is the slice of the doctor repository the auth flows need.
type DoctorStore interface {
	FindByID(ctx context.Context, id uint) (*model.Doctor, error)
	FindByEmail(ctx context.Context, email string) (*model.Doctor, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, doctor *model.Doctor) error
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	UpdateEmail(ctx context.Context, id uint, newEmail string) error
	SetVerificationToken(ctx context.Context, email, tok string, expires time.Time) error
	FindByVerificationToken(ctx context.Context, tok string) (*model.Doctor, error)
	RedeemVerificationToken(ctx context.Context, tok string) (bool, error)
}

type AuthService struct {
	doctors         DoctorStore
	mailer          mailer.Mailer
	verificationTTL time.Duration
}

func NewAuthService(doctors DoctorStore, m mailer.Mailer, verificationTTL time.Duration) *AuthService {
	return &AuthService{
		doctors:         doctors,
		mailer:          m,
		verificationTTL: verificationTTL,
	}
}

// Register creates an unverified account and sends the activation mail.
// A mail delivery failure does not roll the account back; it is reported
// so the caller can point the user at the resend page.
func (s *AuthService) Register(ctx context.Context, form dto.RegisterForm) (*model.Doctor, error) {
	if form.Password != form.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}
	if !password.Validate(form.Password) {
		return nil, apperrors.ErrWeakPassword
	}

	exists, err := s.doctors.EmailExists(ctx, form.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	verifyToken, err := token.New()
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	expires := time.Now().Add(s.verificationTTL)

	doctor := &model.Doctor{
		FirstName:           form.FirstName,
		LastName:            form.LastName,
		Email:               form.Email,
		Password:            string(hash),
		Sex:                 form.Sex,
		Specialty:           form.Specialty,
		Active:              true,
		EmailVerified:       false,
		VerificationToken:   verifyToken,
		VerificationExpires: &expires,
	}

	if err := s.doctors.Create(ctx, doctor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.LogAuth(doctor.Email, "register", true)

	if err := s.mailer.SendVerification(doctor.Email, doctor.DisplayName(), verifyToken); err != nil {
		logger.GetLogger().Error("Verification mail failed after registration",
			zap.String("email", doctor.Email),
			zap.Error(err))
		return doctor, apperrors.WrapError(apperrors.ErrMailFailed, err)
	}

	return doctor, nil
}

// Login checks the credentials and returns the account. Unknown email and
// wrong password collapse into the same error; an unverified account is
// reported distinctly so the user can be pointed at the resend page.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.Doctor, error) {
	doctor, err := s.doctors.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.LogAuth(email, "login", false)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte(plainPassword)); err != nil {
		logger.LogAuth(email, "login", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	if !doctor.EmailVerified || !doctor.Active {
		logger.LogAuth(email, "login", false)
		return nil, apperrors.ErrAccountNotActivated
	}

	logger.LogAuth(email, "login", true)
	return doctor, nil
}

// VerifyEmail consumes an activation token. The token is cleared by the
// same statement that marks the account verified, so a second click on the
// link reports it as invalid. A lingering token on an account that is
// already verified reports ErrAlreadyVerified so the UI can stay friendly.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return apperrors.ErrInvalidToken
	}

	doctor, err := s.doctors.FindByVerificationToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if doctor.EmailVerified {
		return apperrors.ErrAlreadyVerified
	}
	if doctor.VerificationExpires == nil || time.Now().After(*doctor.VerificationExpires) {
		return apperrors.ErrInvalidToken
	}

	ok, err := s.doctors.RedeemVerificationToken(ctx, rawToken)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !ok {
		return apperrors.ErrInvalidToken
	}

	logger.LogAuth(doctor.Email, "verify_email", true)
	return nil
}

// ResendVerification mints a fresh activation token for an unverified
// account. An unknown email returns nil so the response stays neutral; an
// already verified account is reported so the user can just log in.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	doctor, err := s.doctors.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if doctor.EmailVerified {
		return apperrors.ErrAlreadyVerified
	}

	verifyToken, err := token.New()
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	expires := time.Now().Add(s.verificationTTL)
	if err := s.doctors.SetVerificationToken(ctx, doctor.Email, verifyToken, expires); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.mailer.SendVerification(doctor.Email, doctor.DisplayName(), verifyToken); err != nil {
		return apperrors.WrapError(apperrors.ErrMailFailed, err)
	}

	logger.LogAuth(doctor.Email, "resend_verification", true)
	return nil
}
