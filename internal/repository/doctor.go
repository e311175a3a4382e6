package repository

import (
	"context"
	"time"

	"github.com/dashmed/dashmed/internal/model"
	"github.com/dashmed/dashmed/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) FindByID(ctx context.Context, id uint) (*model.Doctor, error) {
	var doctor model.Doctor
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&doctor)
	if result.Error != nil {
		return nil, result.Error
	}
	return &doctor, nil
}

// FindByEmail looks an account up case-insensitively.
func (r *DoctorRepository) FindByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	var doctor model.Doctor
	result := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&doctor)
	if result.Error != nil {
		return nil, result.Error
	}
	return &doctor, nil
}

func (r *DoctorRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	start := time.Now()
	result := r.db.WithContext(ctx).Create(doctor)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to create doctor",
			zap.String("email", doctor.Email),
			zap.Duration("duration", time.Since(start)),
			zap.Error(result.Error))
		return result.Error
	}

	logger.GetLogger().Info("Doctor created",
		zap.String("email", doctor.Email),
		zap.Uint("doctor_id", doctor.ID),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (r *DoctorRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("id = ?", id).
		Update("password", hashedPassword)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update doctor password",
			zap.Uint("doctor_id", id),
			zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateEmail stores the new address and drops the verified flag; the new
// address must be re-verified before the next login.
func (r *DoctorRepository) UpdateEmail(ctx context.Context, id uint, newEmail string) error {
	result := r.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email":          newEmail,
			"email_verified": false,
		})
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update doctor email",
			zap.Uint("doctor_id", id),
			zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetVerificationToken stores a fresh verification token and expiry on the
// account matching the email.
func (r *DoctorRepository) SetVerificationToken(ctx context.Context, email, tok string, expires time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("LOWER(email) = LOWER(?)", email).
		Updates(map[string]interface{}{
			"email_verification_token":   tok,
			"email_verification_expires": expires,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DoctorRepository) FindByVerificationToken(ctx context.Context, tok string) (*model.Doctor, error) {
	var doctor model.Doctor
	result := r.db.WithContext(ctx).
		Where("email_verification_token = ?", tok).
		First(&doctor)
	if result.Error != nil {
		return nil, result.Error
	}
	return &doctor, nil
}

// RedeemVerificationToken marks the matching account as verified and clears
// the token fields in a single UPDATE. The WHERE clause requires an
// unexpired token on an unverified account, so a second redemption of the
// same token matches zero rows and returns false.
func (r *DoctorRepository) RedeemVerificationToken(ctx context.Context, tok string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("email_verification_token = ? AND email_verification_expires > ? AND email_verified = ?", tok, now, false).
		Updates(map[string]interface{}{
			"email_verified":             true,
			"email_verification_token":   nil,
			"email_verification_expires": nil,
			"activated_at":               now,
		})
	if result.Error != nil {
		logger.GetLogger().Error("Failed to redeem verification token",
			zap.Error(result.Error))
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
