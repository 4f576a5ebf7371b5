package services

import (
	"context"
	"time"
)

// Mailer delivers HTML e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ImageUpload is an image received from a client, already read into memory.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Asset is a stored image.
type Asset struct {
	URL string
	ID  string
}

// AssetStore stores and removes coupon images.
type AssetStore interface {
	Upload(ctx context.Context, image ImageUpload) (*Asset, error)
	Delete(ctx context.Context, assetID string) error
}

// EventPublisher emits domain events. Implementations must tolerate being
// unconfigured.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
}

// OTPLimiter caps how many codes one user may request per window.
type OTPLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// Clock returns the current time. Tests replace it to drive expiry.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }
