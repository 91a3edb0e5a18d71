package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

// downloadTokenKey is the object metadata key Firebase Storage reads to serve
// tokenised download URLs.
const downloadTokenKey = "firebaseStorageDownloadTokens"

// FirebaseStore writes photos into the project's Firebase Storage bucket.
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	newToken   func() string
}

// NewFirebaseStore opens the named Firebase Storage bucket.
func NewFirebaseStore(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStore, error) {
	if bucketName == "" {
		return nil, errors.New("firebase storage bucket name is required")
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("firebase storage bucket: %w", err)
	}

	return &FirebaseStore{
		bucket:     bucket,
		bucketName: bucketName,
		newToken:   uuid.NewString,
	}, nil
}

func (s *FirebaseStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	token := s.newToken()

	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	return downloadURL(s.bucketName, path, token), nil
}

func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	if err := s.bucket.Object(path).Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func downloadURL(bucket, path, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(path), token)
}
