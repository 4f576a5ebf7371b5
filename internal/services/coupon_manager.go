package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/metrics"
	"github.com/Noor-Islam16/Coupon-Backend/internal/models"
	"github.com/Noor-Islam16/Coupon-Backend/internal/repository"
	"github.com/Noor-Islam16/Coupon-Backend/internal/utils"
)

// ImageConstraints bounds what may be uploaded as a coupon image.
type ImageConstraints struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

// DefaultImageConstraints allows JPEG, PNG and WebP images up to 5 MiB.
var DefaultImageConstraints = ImageConstraints{
	MaxSizeBytes: 5 * 1024 * 1024,
	AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
}

// Check validates an upload against the constraints, sniffing the content
// type from the bytes rather than trusting the client header.
func (c ImageConstraints) Check(image *ImageUpload) error {
	if len(image.Data) == 0 {
		return newError(KindValidation, "image is empty")
	}
	if c.MaxSizeBytes > 0 && int64(len(image.Data)) > c.MaxSizeBytes {
		return newError(KindValidation, fmt.Sprintf("image too large (max %d bytes)", c.MaxSizeBytes))
	}
	detected := http.DetectContentType(image.Data)
	for _, allowed := range c.AllowedTypes {
		if detected == allowed {
			image.ContentType = detected
			return nil
		}
	}
	return newError(KindValidation, "image must be one of: "+strings.Join(c.AllowedTypes, ", "))
}

// CouponManagerConfig holds lifecycle settings.
type CouponManagerConfig struct {
	Retention time.Duration
	Images    ImageConstraints
}

// CouponManager owns the coupon lifecycle: active, expired, purged.
type CouponManager struct {
	store    CouponStore
	assets   AssetStore
	events   EventPublisher
	validate *validator.Validate
	cfg      CouponManagerConfig
	log      *zap.SugaredLogger
	now      Clock
}

// CouponOption customises a CouponManager.
type CouponOption func(*CouponManager)

// WithCouponEvents publishes coupon.expired and coupon.purged events.
func WithCouponEvents(p EventPublisher) CouponOption {
	return func(m *CouponManager) { m.events = p }
}

// WithCouponClock overrides the time source.
func WithCouponClock(c Clock) CouponOption {
	return func(m *CouponManager) { m.now = c }
}

// NewCouponManager constructs a CouponManager. assets may be nil, in which
// case image uploads are rejected.
func NewCouponManager(store CouponStore, assets AssetStore, cfg CouponManagerConfig, log *zap.SugaredLogger, opts ...CouponOption) *CouponManager {
	if cfg.Images.AllowedTypes == nil {
		cfg.Images = DefaultImageConstraints
	}
	m := &CouponManager{
		store:    store,
		assets:   assets,
		events:   noopPublisher{},
		validate: utils.NewValidator(),
		cfg:      cfg,
		log:      log,
		now:      systemClock,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CouponInput is the body of a coupon create.
type CouponInput struct {
	BrandName string  `json:"brandName" validate:"required"`
	CouponID  string  `json:"couponId" validate:"required"`
	Bogo      *string `json:"bogo"`
	Discount  *string `json:"discount"`
	Audience  string  `json:"audience" validate:"required"`
	Duration  string  `json:"duration" validate:"required"`
}

// CouponUpdate carries only the fields present in an update request. A nil
// field keeps its stored value; a non-nil field is applied as given.
type CouponUpdate struct {
	BrandName *string `json:"brandName"`
	CouponID  *string `json:"couponId"`
	Bogo      *string `json:"bogo"`
	Discount  *string `json:"discount"`
	Audience  *string `json:"audience"`
	Duration  *string `json:"duration"`
}

// Create stores a new active coupon with an optional image.
func (m *CouponManager) Create(ctx context.Context, in CouponInput, image *ImageUpload) (*models.Coupon, error) {
	in.BrandName = strings.TrimSpace(in.BrandName)
	in.CouponID = strings.TrimSpace(in.CouponID)
	in.Audience = strings.TrimSpace(in.Audience)
	in.Duration = strings.TrimSpace(in.Duration)
	if err := m.validate.Struct(in); err != nil {
		return nil, newError(KindValidation, utils.FormatValidationErrors(err))
	}

	taken, err := m.store.ExistsByCouponID(ctx, in.CouponID)
	if err != nil {
		return nil, internalError("failed to check coupon id", err)
	}
	if taken {
		return nil, newError(KindConflict, "coupon id already exists")
	}

	asset, err := m.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	now := m.now()
	duration := utils.ParseCouponDuration(in.Duration)
	if duration.Shape == utils.DurationUnparsed {
		m.log.Warnw("coupon duration not recognised, expiring immediately", "coupon_id", in.CouponID, "duration", in.Duration)
	}

	coupon := &models.Coupon{
		BaseModel: models.BaseModel{CreatedAt: now, UpdatedAt: now},
		CouponID:  in.CouponID,
		BrandName: in.BrandName,
		Bogo:      in.Bogo,
		Discount:  in.Discount,
		Audience:  in.Audience,
		Duration:  in.Duration,
		ExpiresAt: now.Add(duration.Span()),
		IsExpired: false,
	}
	if asset != nil {
		coupon.ImageURL = &asset.URL
		coupon.ImageAssetID = &asset.ID
	}

	if err := m.store.Create(ctx, coupon); err != nil {
		if asset != nil {
			m.discardAsset(ctx, asset.ID)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(KindConflict, "coupon id already exists")
		}
		return nil, internalError("failed to create coupon", err)
	}

	m.log.Infow("coupon created", "coupon_id", coupon.CouponID, "expires_at", coupon.ExpiresAt)
	return coupon, nil
}

// Update applies the present fields to a coupon. A new duration re-arms the
// coupon from now, even if it had already expired.
func (m *CouponManager) Update(ctx context.Context, couponID string, in CouponUpdate, image *ImageUpload) (*models.Coupon, error) {
	coupon, err := m.find(ctx, couponID)
	if err != nil {
		return nil, err
	}

	for field, value := range map[string]*string{
		"brandName": in.BrandName,
		"couponId":  in.CouponID,
		"audience":  in.Audience,
		"duration":  in.Duration,
	} {
		if value != nil && strings.TrimSpace(*value) == "" {
			return nil, newError(KindValidation, field+" cannot be empty")
		}
	}

	// Only supplied columns are written. is_expired and expired_at change
	// only when a new duration re-arms the coupon.
	updates := map[string]interface{}{}
	if in.CouponID != nil {
		next := strings.TrimSpace(*in.CouponID)
		if next != coupon.CouponID {
			taken, err := m.store.ExistsByCouponID(ctx, next)
			if err != nil {
				return nil, internalError("failed to check coupon id", err)
			}
			if taken {
				return nil, newError(KindConflict, "coupon id already exists")
			}
			coupon.CouponID = next
			updates["coupon_id"] = next
		}
	}
	if in.BrandName != nil {
		coupon.BrandName = strings.TrimSpace(*in.BrandName)
		updates["brand_name"] = coupon.BrandName
	}
	if in.Audience != nil {
		coupon.Audience = strings.TrimSpace(*in.Audience)
		updates["audience"] = coupon.Audience
	}
	if in.Bogo != nil {
		coupon.Bogo = in.Bogo
		updates["bogo"] = *in.Bogo
	}
	if in.Discount != nil {
		coupon.Discount = in.Discount
		updates["discount"] = *in.Discount
	}

	now := m.now()
	if in.Duration != nil {
		coupon.Duration = strings.TrimSpace(*in.Duration)
		coupon.ExpiresAt = utils.ExpiresAt(now, coupon.Duration)
		coupon.IsExpired = false
		coupon.ExpiredAt = nil
		updates["duration"] = coupon.Duration
		updates["expires_at"] = coupon.ExpiresAt
		updates["is_expired"] = false
		updates["expired_at"] = nil
	}

	asset, err := m.upload(ctx, image)
	if err != nil {
		return nil, err
	}
	var oldAssetID string
	if asset != nil {
		if coupon.HasAsset() {
			oldAssetID = *coupon.ImageAssetID
		}
		coupon.ImageURL = &asset.URL
		coupon.ImageAssetID = &asset.ID
		updates["image_url"] = asset.URL
		updates["image_asset_id"] = asset.ID
	}

	coupon.UpdatedAt = now
	updates["updated_at"] = now
	if err := m.store.UpdateFields(ctx, coupon.ID, updates); err != nil {
		if asset != nil {
			m.discardAsset(ctx, asset.ID)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errCouponNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(KindConflict, "coupon id already exists")
		}
		return nil, internalError("failed to update coupon", err)
	}

	if oldAssetID != "" {
		m.discardAsset(ctx, oldAssetID)
	}

	if in.Duration != nil {
		// A re-armed coupon is returned active; an already-due duration is
		// flagged on the next read or sweep.
		return coupon, nil
	}

	fresh, err := m.find(ctx, coupon.CouponID)
	if err != nil {
		return nil, err
	}
	m.flagIfDue(ctx, fresh)
	return fresh, nil
}

// Delete removes a coupon immediately together with its image.
func (m *CouponManager) Delete(ctx context.Context, couponID string) error {
	coupon, err := m.find(ctx, couponID)
	if err != nil {
		return err
	}

	if coupon.HasAsset() {
		m.discardAsset(ctx, *coupon.ImageAssetID)
	}

	if err := m.store.Delete(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errCouponNotFound
		}
		return internalError("failed to delete coupon", err)
	}

	m.log.Infow("coupon deleted", "coupon_id", coupon.CouponID)
	return nil
}

// GetByID loads one coupon, flagging it expired if it is due.
func (m *CouponManager) GetByID(ctx context.Context, couponID string) (*models.Coupon, error) {
	coupon, err := m.find(ctx, couponID)
	if err != nil {
		return nil, err
	}
	m.flagIfDue(ctx, coupon)
	return coupon, nil
}

// ListActive sweeps, then returns unexpired coupons newest first.
func (m *CouponManager) ListActive(ctx context.Context, page utils.Pagination) ([]models.Coupon, error) {
	return m.list(ctx, true, page)
}

// ListAll sweeps, then returns every coupon newest first.
func (m *CouponManager) ListAll(ctx context.Context, page utils.Pagination) ([]models.Coupon, error) {
	return m.list(ctx, false, page)
}

func (m *CouponManager) list(ctx context.Context, activeOnly bool, page utils.Pagination) ([]models.Coupon, error) {
	if _, err := m.Sweep(ctx); err != nil {
		return nil, internalError("failed to expire coupons", err)
	}
	items, err := m.store.List(ctx, activeOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, internalError("failed to list coupons", err)
	}
	return items, nil
}

// Stats returns coupon counts after a sweep.
func (m *CouponManager) Stats(ctx context.Context) (repository.CouponStats, error) {
	if _, err := m.Sweep(ctx); err != nil {
		return repository.CouponStats{}, internalError("failed to expire coupons", err)
	}
	stats, err := m.store.Stats(ctx)
	if err != nil {
		return stats, internalError("failed to count coupons", err)
	}
	return stats, nil
}

// Sweep flags every due coupon as expired in one pass.
func (m *CouponManager) Sweep(ctx context.Context) (int64, error) {
	now := m.now()
	n, err := m.store.ExpireDue(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.CouponsExpired.WithLabelValues("sweep").Add(float64(n))
		m.log.Infow("coupons expired", "count", n)
		m.publish(ctx, "coupon.expired", "sweep", map[string]interface{}{"count": n, "expired_at": now})
	}
	return n, nil
}

// Cleanup purges coupons that have been expired for longer than the
// retention window. The row delete is conditional on the coupon still being
// expired; its image is removed best-effort afterwards.
func (m *CouponManager) Cleanup(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.cfg.Retention)
	items, err := m.store.ExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for i := range items {
		coupon := &items[i]
		removed, err := m.store.PurgeExpired(ctx, coupon.ID, cutoff)
		if err != nil {
			m.log.Errorw("failed to purge coupon", "coupon_id", coupon.CouponID, "error", err)
			continue
		}
		if !removed {
			// Re-armed or already deleted since the listing.
			continue
		}
		if coupon.HasAsset() {
			m.discardAsset(ctx, *coupon.ImageAssetID)
		}
		purged++
		metrics.CouponsPurged.Inc()
		m.publish(ctx, "coupon.purged", coupon.CouponID, map[string]interface{}{"coupon_id": coupon.CouponID, "expired_at": coupon.ExpiredAt})
	}

	if purged > 0 {
		m.log.Infow("expired coupons purged", "count", purged, "cutoff", cutoff)
	}
	return purged, nil
}

func (m *CouponManager) find(ctx context.Context, couponID string) (*models.Coupon, error) {
	coupon, err := m.store.FindByCouponID(ctx, strings.TrimSpace(couponID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errCouponNotFound
		}
		return nil, internalError("failed to load coupon", err)
	}
	return coupon, nil
}

// flagIfDue performs the lazy active→expired transition for one coupon.
func (m *CouponManager) flagIfDue(ctx context.Context, coupon *models.Coupon) {
	now := m.now()
	if coupon.IsExpired || now.Before(coupon.ExpiresAt) {
		return
	}

	changed, err := m.store.MarkExpired(ctx, coupon, now)
	if err != nil {
		m.log.Warnw("failed to flag expired coupon", "coupon_id", coupon.CouponID, "error", err)
	}
	coupon.IsExpired = true
	if changed {
		coupon.ExpiredAt = &now
		coupon.UpdatedAt = now
		metrics.CouponsExpired.WithLabelValues("read").Inc()
		return
	}
	if fresh, err := m.store.FindByCouponID(ctx, coupon.CouponID); err == nil && fresh.IsExpired {
		*coupon = *fresh
	}
}

func (m *CouponManager) upload(ctx context.Context, image *ImageUpload) (*Asset, error) {
	if image == nil {
		return nil, nil
	}
	if m.assets == nil {
		return nil, newError(KindValidation, "image uploads are not enabled")
	}
	if err := m.cfg.Images.Check(image); err != nil {
		return nil, err
	}
	asset, err := m.assets.Upload(ctx, *image)
	if err != nil {
		return nil, internalError("failed to upload image", err)
	}
	return asset, nil
}

// discardAsset deletes an image, logging instead of failing.
func (m *CouponManager) discardAsset(ctx context.Context, assetID string) {
	if m.assets == nil {
		return
	}
	if err := m.assets.Delete(ctx, assetID); err != nil {
		metrics.AssetDeleteFailures.Inc()
		m.log.Warnw("failed to delete image asset", "asset_id", assetID, "error", err)
	}
}

func (m *CouponManager) publish(ctx context.Context, eventType, key string, payload interface{}) {
	if err := m.events.Publish(ctx, eventType, key, payload); err != nil {
		m.log.Warnw("event publish failed", "event", eventType, "error", err)
	}
}
