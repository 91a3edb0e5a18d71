// Package blob stores report photos and hands back public download URLs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Store uploads bytes under path and returns a URL clients can fetch. Delete
// removes an object whose URL was never recorded.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}

// File validation constants
var (
	AllowedImageTypes = []string{".jpg", ".jpeg", ".png", ".webp", ".heic"}
	MaxImageSize      = int64(10 * 1024 * 1024) // 10MB
)

var ErrEmptyPhoto = errors.New("photo is empty")

// Photo is an image received from a client, held in memory so uploads can be retried.
type Photo struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ReportPhotoPath builds reports/<reportID>/<reportID>_<unixMillis>.jpg.
func ReportPhotoPath(reportID string, at time.Time) string {
	return fmt.Sprintf("reports/%s/%s_%d.jpg", reportID, reportID, at.UnixMilli())
}

// ReadPhoto loads and validates a multipart upload.
func ReadPhoto(header *multipart.FileHeader) (*Photo, error) {
	if err := ValidateImageFile(header); err != nil {
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > MaxImageSize {
		return nil, fmt.Errorf("image file size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024))
	}
	if len(data) == 0 {
		return nil, ErrEmptyPhoto
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &Photo{Data: data, ContentType: contentType, Filename: header.Filename}, nil
}

// ValidateImageFile validates an image file upload
func ValidateImageFile(header *multipart.FileHeader) error {
	if header.Size > MaxImageSize {
		return fmt.Errorf("image file size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, allowed := range AllowedImageTypes {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("invalid image file type: %s. Allowed types: %s", ext, strings.Join(AllowedImageTypes, ", "))
}
