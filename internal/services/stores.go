package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Noor-Islam16/Coupon-Backend/internal/models"
	"github.com/Noor-Islam16/Coupon-Backend/internal/repository"
)

// UserStore persists users and credentials.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error
}

// OTPLedger persists one live code per (user, purpose).
type OTPLedger interface {
	Replace(ctx context.Context, code *models.OneTimeCode) error
	Consume(ctx context.Context, userID uuid.UUID, purpose models.OTPPurpose, code string, now time.Time) error
}

// ProfileStore persists one profile per user.
type ProfileStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	UpdateFields(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// CouponStore persists coupons.
type CouponStore interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	FindByCouponID(ctx context.Context, couponID string) (*models.Coupon, error)
	ExistsByCouponID(ctx context.Context, couponID string) (bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, coupon *models.Coupon) error
	PurgeExpired(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error)
	MarkExpired(ctx context.Context, coupon *models.Coupon, now time.Time) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	ExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Coupon, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]models.Coupon, error)
	Stats(ctx context.Context) (repository.CouponStats, error)
}

var (
	_ UserStore    = (*repository.UserRepository)(nil)
	_ OTPLedger    = (*repository.OTPRepository)(nil)
	_ ProfileStore = (*repository.ProfileRepository)(nil)
	_ CouponStore  = (*repository.CouponRepository)(nil)
)
