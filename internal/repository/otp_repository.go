package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Noor-Islam16/Coupon-Backend/internal/models"
)

// OTPRepository is the one-time code ledger. It holds at most one row per
// (user, purpose).
type OTPRepository struct {
	db *gorm.DB
}

// NewOTPRepository constructs an OTPRepository.
func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Replace removes any code for the pair and stores the new one.
func (r *OTPRepository) Replace(ctx context.Context, code *models.OneTimeCode) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND purpose = ?", code.UserID, code.Purpose).
			Delete(&models.OneTimeCode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	}))
}

// Consume deletes the live code matching (user, purpose, code) that has not
// expired at now. It returns ErrNotFound when nothing matched, including
// when a concurrent caller consumed the same code first.
func (r *OTPRepository) Consume(ctx context.Context, userID uuid.UUID, purpose models.OTPPurpose, code string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND code = ? AND expires_at > ?", userID, purpose, code, now).
		Delete(&models.OneTimeCode{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of rows held for the pair.
func (r *OTPRepository) Count(ctx context.Context, userID uuid.UUID, purpose models.OTPPurpose) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OneTimeCode{}).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Count(&n).Error
	return n, err
}
