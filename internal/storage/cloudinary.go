package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

// CloudinaryStore keeps coupon images on Cloudinary. The asset ID is the
// Cloudinary public ID.
type CloudinaryStore struct {
	cld    *cld.Cloudinary
	folder string
}

// NewCloudinaryStore connects using a cloudinary:// URL. An empty URL falls
// back to the CLOUDINARY_URL environment variable.
func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	var (
		client *cld.Cloudinary
		err    error
	)
	if cloudinaryURL == "" {
		client, err = cld.New()
	} else {
		client, err = cld.NewFromURL(cloudinaryURL)
	}
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: client, folder: folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, image services.ImageUpload) (*services.Asset, error) {
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(image.Data), uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
	})
	if err != nil {
		return nil, err
	}
	if res.Error.Message != "" {
		return nil, errors.New(res.Error.Message)
	}
	return &services.Asset{URL: res.SecureURL, ID: res.PublicID}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, assetID string) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     assetID,
		ResourceType: "image",
	})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: %s", assetID, res.Result)
	}
	return nil
}
