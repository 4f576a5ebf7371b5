package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. PasswordHash never leaves the service layer.
type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string `gorm:"uniqueIndex;not null" json:"phone"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsVerified   bool   `gorm:"not null;default:false" json:"is_verified"`
}

// OTPPurpose scopes a one-time code.
type OTPPurpose string

const (
	OTPPurposeEmail         OTPPurpose = "email"
	OTPPurposePhone         OTPPurpose = "phone"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// OneTimeCode is the single live code for a (user, purpose) pair.
type OneTimeCode struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_otp_user_purpose" json:"user_id"`
	Purpose   OTPPurpose `gorm:"type:varchar(32);not null;uniqueIndex:idx_otp_user_purpose" json:"purpose"`
	Code      string     `gorm:"type:varchar(6);not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
}
