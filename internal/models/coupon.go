package models

import "time"

// Coupon is a promotional offer with a free-text duration. ExpiresAt is
// authoritative; IsExpired and ExpiredAt are a cached projection of it.
type Coupon struct {
	BaseModel
	CouponID     string     `gorm:"uniqueIndex;not null" json:"coupon_id"`
	BrandName    string     `gorm:"not null" json:"brand_name"`
	Bogo         *string    `json:"bogo"`
	Discount     *string    `json:"discount"`
	Audience     string     `gorm:"not null" json:"audience"`
	Duration     string     `gorm:"not null" json:"duration"`
	ImageURL     *string    `json:"image_url"`
	ImageAssetID *string    `json:"-"`
	ExpiresAt    time.Time  `gorm:"index;not null" json:"expires_at"`
	IsExpired    bool       `gorm:"index;not null;default:false" json:"is_expired"`
	ExpiredAt    *time.Time `gorm:"index" json:"expired_at"`
}

// HasAsset reports whether an external image asset is attached.
func (c *Coupon) HasAsset() bool {
	return c.ImageAssetID != nil && *c.ImageAssetID != ""
}
