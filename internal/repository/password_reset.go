package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dashmed/dashmed/internal/model"
	"github.com/dashmed/dashmed/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RedeemOutcome is the explicit result of a reset-token redemption.
// The caller maps it to a user-facing message; only RedeemOK mutates state.
type RedeemOutcome int

const (
	// RedeemOK means the password was updated and the token consumed.
	RedeemOK RedeemOutcome = iota
	// RedeemInvalidToken means no usable token row matched the hash.
	RedeemInvalidToken
	// RedeemNoAccount means the token was valid but no account row matched
	// its email (orphaned token); nothing was changed.
	RedeemNoAccount
)

type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Purge removes every reset row bound to the email plus any expired row,
// so at most one token per address is actionable at a time.
func (r *PasswordResetRepository) Purge(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) OR expires_at < ?", email, time.Now()).
		Delete(&model.PasswordReset{})
	return result.Error
}

func (r *PasswordResetRepository) Create(ctx context.Context, reset *model.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

// Exists reports whether an unexpired, unused token with the given hash is
// bound to the email. Used to gate the reset form display.
func (r *PasswordResetRepository) Exists(ctx context.Context, email, tokenHash string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.PasswordReset{}).
		Where("LOWER(email) = LOWER(?) AND token_hash = ? AND expires_at > ? AND used_at IS NULL",
			email, tokenHash, time.Now()).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// CountForEmail returns the number of reset rows currently stored for an
// email, expired or not. Tests use it to assert the neutral-response path
// creates nothing.
func (r *PasswordResetRepository) CountForEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.PasswordReset{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count)
	return count, result.Error
}

// Redeem consumes a reset token and installs the new password hash inside
// one transaction. The token row is locked with SELECT ... FOR UPDATE so
// two concurrent submissions of the same link serialize: the loser re-reads
// a row whose used_at is set and gets RedeemInvalidToken.
func (r *PasswordResetRepository) Redeem(ctx context.Context, tokenHash, newPasswordHash string) (RedeemOutcome, error) {
	outcome := RedeemInvalidToken

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset model.PasswordReset
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ? AND expires_at > ? AND used_at IS NULL", tokenHash, time.Now()).
			First(&reset)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				outcome = RedeemInvalidToken
				return nil
			}
			return result.Error
		}

		update := tx.Model(&model.Doctor{}).
			Where("LOWER(email) = LOWER(?)", reset.Email).
			Update("password", newPasswordHash)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			// Token without a matching account; leave the token untouched
			// and roll the transaction back.
			logger.GetLogger().Error("No doctor row updated during password reset",
				zap.String("email", reset.Email))
			outcome = RedeemNoAccount
			return gorm.ErrRecordNotFound
		}

		now := time.Now()
		mark := tx.Model(&model.PasswordReset{}).
			Where("token_hash = ? AND used_at IS NULL", tokenHash).
			Update("used_at", now)
		if mark.Error != nil {
			return mark.Error
		}

		outcome = RedeemOK
		return nil
	})

	if err != nil {
		if outcome == RedeemNoAccount {
			return RedeemNoAccount, nil
		}
		return RedeemInvalidToken, err
	}
	return outcome, nil
}
