package database

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
)

type Firestore struct {
	Client *firestore.Client
}

// ConnectFirestore opens the default Firestore database of the Firebase project.
func ConnectFirestore(ctx context.Context, app *firebase.App) (*Firestore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open Firestore: %w", err)
	}
	return &Firestore{Client: client}, nil
}

func (f *Firestore) Close() error {
	return f.Client.Close()
}

// HealthCheck reads at most one document from the reports collection.
func (f *Firestore) HealthCheck(ctx context.Context) error {
	it := f.Client.Collection("reports").Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore query failed: %w", err)
	}
	return nil
}
