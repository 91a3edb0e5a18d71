package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Service handles Cloudinary upload operations
type Service struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// NewService creates a new Cloudinary service instance
func NewService(cloudName, apiKey, apiSecret, uploadFolder string) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	return &Service{
		cld:          cld,
		uploadFolder: strings.Trim(uploadFolder, "/"),
	}, nil
}

// Upload stores an image under a public ID derived from objectPath, so
// reports/<id>/<id>_<ts>.jpg keeps the same hierarchy as the bucket backend.
func (s *Service) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	uploadParams := uploader.UploadParams{
		PublicID:     publicID(s.uploadFolder, objectPath),
		ResourceType: "image",
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}

	return result.SecureURL, nil
}

// Delete removes an asset from Cloudinary
func (s *Service) Delete(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return errors.New("path is required")
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID(s.uploadFolder, objectPath),
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	return nil
}

// publicID drops the extension; Cloudinary appends the format itself.
func publicID(folder, objectPath string) string {
	id := strings.TrimSuffix(objectPath, path.Ext(objectPath))
	if folder == "" {
		return id
	}
	return folder + "/" + id
}
