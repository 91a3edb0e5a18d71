package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/xyz-asif/reportabaches/internal/config"
)

// InitFirebase initializes the Firebase Admin SDK app shared by auth, storage and firestore.
func InitFirebase(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	opt := option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)

	fbConfig := &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}

	app, err := firebase.NewApp(ctx, fbConfig, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	return app, nil
}

// NewFirebaseVerifier returns the Firebase Auth client, which verifies ID tokens.
func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (TokenVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}
	return client, nil
}
