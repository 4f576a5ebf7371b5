package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Noor-Islam16/Coupon-Backend/internal/models"
)

// CouponRepository is the coupon store.
type CouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository constructs a CouponRepository.
func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// CouponStats holds coupon counts by state.
type CouponStats struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	Expired int64 `json:"expired"`
}

// Create inserts a coupon.
func (r *CouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	return translate(r.db.WithContext(ctx).Create(coupon).Error)
}

// FindByCouponID loads a coupon by its caller-supplied coupon_id.
func (r *CouponRepository) FindByCouponID(ctx context.Context, couponID string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).Where("coupon_id = ?", couponID).First(&coupon).Error; err != nil {
		return nil, translate(err)
	}
	return &coupon, nil
}

// ExistsByCouponID reports whether a coupon_id is taken.
func (r *CouponRepository) ExistsByCouponID(ctx context.Context, couponID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Coupon{}).Where("coupon_id = ?", couponID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields writes only the given columns of a coupon.
func (r *CouponRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-deletes a coupon row.
func (r *CouponRepository) Delete(ctx context.Context, coupon *models.Coupon) error {
	res := r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", coupon.ID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired deletes a coupon only while it is still expired before the
// cutoff. It reports whether a row was removed.
func (r *CouponRepository) PurgeExpired(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND is_expired = ? AND expired_at IS NOT NULL AND expired_at < ?", id, true, cutoff).
		Delete(&models.Coupon{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkExpired flags one coupon as expired if it is still active and due.
// It reports whether this call performed the transition.
func (r *CouponRepository) MarkExpired(ctx context.Context, coupon *models.Coupon, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND is_expired = ? AND expires_at <= ?", coupon.ID, false, now).
		Updates(map[string]interface{}{"is_expired": true, "expired_at": now, "updated_at": now})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ExpireDue flags every active coupon whose expires_at has passed.
func (r *CouponRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("is_expired = ? AND expires_at <= ?", false, now).
		Updates(map[string]interface{}{"is_expired": true, "expired_at": now, "updated_at": now})
	return res.RowsAffected, translate(res.Error)
}

// ExpiredBefore lists coupons flagged expired before the cutoff.
func (r *CouponRepository) ExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Coupon, error) {
	var items []models.Coupon
	err := r.db.WithContext(ctx).
		Where("is_expired = ? AND expired_at IS NOT NULL AND expired_at < ?", true, cutoff).
		Order("expired_at asc").
		Find(&items).Error
	return items, err
}

// List returns coupons newest first. activeOnly filters out expired rows;
// a zero limit returns every row.
func (r *CouponRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]models.Coupon, error) {
	query := r.db.WithContext(ctx).Model(&models.Coupon{})
	if activeOnly {
		query = query.Where("is_expired = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var items []models.Coupon
	err := query.Order("created_at desc").Find(&items).Error
	return items, err
}

// Stats counts coupons by state.
func (r *CouponRepository) Stats(ctx context.Context) (CouponStats, error) {
	var stats CouponStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Coupon{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Coupon{}).Where("is_expired = ?", true).Count(&stats.Expired).Error; err != nil {
		return stats, err
	}
	stats.Active = stats.Total - stats.Expired
	return stats, nil
}
