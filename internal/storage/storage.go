package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/Noor-Islam16/Coupon-Backend/internal/config"
	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

// New builds the asset store selected by cfg.Driver. An empty driver
// disables image uploads and returns nil.
func New(ctx context.Context, cfg config.AssetConfig) (services.AssetStore, error) {
	switch cfg.Driver {
	case "cloudinary":
		return NewCloudinaryStore(cfg.CloudinaryURL, cfg.Folder)
	case "s3":
		return NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.Folder)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown asset driver %q", cfg.Driver)
	}
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// objectName returns a collision-free name for an upload, keeping the
// extension implied by its content type.
func objectName(folder string, image services.ImageUpload) string {
	ext, ok := extensions[image.ContentType]
	if !ok {
		ext = strings.ToLower(path.Ext(image.Filename))
	}
	return path.Join(folder, uuid.NewString()+ext)
}
