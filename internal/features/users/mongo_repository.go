package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

// MongoRepository handles database interactions for users
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository initializes the repository and creates necessary indexes
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	collection := db.Collection("users")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
	})

	return &MongoRepository{collection: collection}
}

// Create inserts a new user profile
func (r *MongoRepository) Create(ctx context.Context, user *User) error {
	if user.ReportsCreated == nil {
		user.ReportsCreated = []string{}
	}
	if user.ReportsConfirmed == nil {
		user.ReportsConfirmed = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.StoreFailure("insert user", err)
	}
	return nil
}

// GetByID finds a user by id
func (r *MongoRepository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.StoreFailure("get user "+id, err)
	}
	return &user, nil
}

// AddReportCreated adds reportID to the user's created set
func (r *MongoRepository) AddReportCreated(ctx context.Context, userID, reportID string) error {
	return r.addToSet(ctx, userID, "reportsCreated", reportID)
}

// AddReportConfirmed adds reportID to the user's confirmed set
func (r *MongoRepository) AddReportConfirmed(ctx context.Context, userID, reportID string) error {
	return r.addToSet(ctx, userID, "reportsConfirmed", reportID)
}

func (r *MongoRepository) addToSet(ctx context.Context, userID, field, reportID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{field: reportID}},
	)
	if err != nil {
		return apperrors.StoreFailure("update "+field+" of user "+userID, err)
	}
	return nil
}
