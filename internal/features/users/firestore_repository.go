package users

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

// FirestoreRepository keeps users in the "users" collection keyed by uid.
type FirestoreRepository struct {
	col *firestore.CollectionRef
}

func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{col: client.Collection("users")}
}

func (r *FirestoreRepository) Create(ctx context.Context, user *User) error {
	if user.ReportsCreated == nil {
		user.ReportsCreated = []string{}
	}
	if user.ReportsConfirmed == nil {
		user.ReportsConfirmed = []string{}
	}

	if _, err := r.col.Doc(user.ID).Create(ctx, user); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return apperrors.ErrDuplicate
		}
		return apperrors.StoreFailure("create user", err)
	}
	return nil
}

func (r *FirestoreRepository) GetByID(ctx context.Context, id string) (*User, error) {
	snap, err := r.col.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.StoreFailure("get user "+id, err)
	}

	var user User
	if err := snap.DataTo(&user); err != nil {
		return nil, apperrors.StoreFailure("decode user "+id, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

func (r *FirestoreRepository) AddReportCreated(ctx context.Context, userID, reportID string) error {
	return r.union(ctx, userID, "reportsCreated", reportID)
}

func (r *FirestoreRepository) AddReportConfirmed(ctx context.Context, userID, reportID string) error {
	return r.union(ctx, userID, "reportsConfirmed", reportID)
}

func (r *FirestoreRepository) union(ctx context.Context, userID, field, reportID string) error {
	_, err := r.col.Doc(userID).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.ArrayUnion(reportID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return apperrors.StoreFailure("update "+field+" of user "+userID, err)
	}
	return nil
}
