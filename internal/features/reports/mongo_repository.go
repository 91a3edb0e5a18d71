package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

// MongoRepository stores reports in the "reports" collection. Ids are hex
// ObjectIDs kept as strings so they look the same as Firestore document ids.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository initializes the repository and creates necessary indexes
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	collection := db.Collection("reports")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "createdBy.userId", Value: 1}},
		},
		{
			// Photo sweeper
			Keys: bson.D{{Key: "photoState", Value: 1}, {Key: "createdAt", Value: 1}},
		},
	})

	return &MongoRepository{collection: collection}
}

// Insert stores a new report and returns its id
func (r *MongoRepository) Insert(ctx context.Context, report *Report) (string, error) {
	if report.ID == "" {
		report.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.ErrDuplicate
		}
		return "", apperrors.StoreFailure("insert report", err)
	}
	return report.ID, nil
}

// GetByID finds a report by its id
func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Report, error) {
	var report Report
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.StoreFailure("get report "+id, err)
	}
	return &report, nil
}

// FindByCategory returns every report tagged with category
func (r *MongoRepository) FindByCategory(ctx context.Context, category Category) ([]Report, error) {
	return r.find(ctx, bson.M{"category": category}, nil)
}

// List returns reports matching filter, newest first
func (r *MongoRepository) List(ctx context.Context, filter ListFilter) ([]Report, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// ListByIDs fetches one batch of reports by id
func (r *MongoRepository) ListByIDs(ctx context.Context, ids []string) ([]Report, error) {
	if len(ids) == 0 {
		return []Report{}, nil
	}
	if len(ids) > listBatchSize {
		return nil, fmt.Errorf("list by ids: batch of %d exceeds %d", len(ids), listBatchSize)
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// AttachPhotos sets the photo list and marks the photo phase as done
func (r *MongoRepository) AttachPhotos(ctx context.Context, id string, urls []string) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"photos":     urls,
			"photoState": PhotoAttached,
			"updatedAt":  time.Now().UTC(),
		},
	})
}

// MarkPhotoFailed fails the photo phase only while it is still pending
func (r *MongoRepository) MarkPhotoFailed(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "photoState": PhotoPending},
		bson.M{"$set": bson.M{
			"photoState": PhotoFailed,
			"updatedAt":  time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, apperrors.StoreFailure("mark photo failed "+id, err)
	}
	if result.MatchedCount > 0 {
		return true, nil
	}
	return false, r.exists(ctx, id)
}

// AppendConfirmation pushes the confirmation and bumps the counter in one update
func (r *MongoRepository) AppendConfirmation(ctx context.Context, id string, c Confirmation) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"confirmations": c},
		"$inc":  bson.M{"confirmationCount": 1},
		"$set":  bson.M{"updatedAt": c.Timestamp},
	})
}

// Resolve applies the terminal transition only to an unresolved report
func (r *MongoRepository) Resolve(ctx context.Context, id string, evidence ResolutionEvidence) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": StatusResolved}},
		bson.M{"$set": bson.M{
			"status":             StatusResolved,
			"resolvedAt":         evidence.Timestamp,
			"resolutionEvidence": evidence,
			"updatedAt":          evidence.Timestamp,
		}},
	)
	if err != nil {
		return apperrors.StoreFailure("resolve report "+id, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	if err := r.exists(ctx, id); err != nil {
		return err
	}
	return apperrors.ErrAlreadyResolved
}

// FindStalePhotoPending lists reports stuck between the two create phases
func (r *MongoRepository) FindStalePhotoPending(ctx context.Context, before time.Time) ([]Report, error) {
	return r.find(ctx, bson.M{
		"photoState": PhotoPending,
		"createdAt":  bson.M{"$lt": before},
	}, nil)
}

func (r *MongoRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.StoreFailure("update report", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// exists returns ErrNotFound for an unknown id
func (r *MongoRepository) exists(ctx context.Context, id string) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.StoreFailure("count report "+id, err)
	}
	if count == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Report, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	cursor, err := r.collection.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, apperrors.StoreFailure("find reports", err)
	}
	defer cursor.Close(ctx)

	reports := make([]Report, 0)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, apperrors.StoreFailure("decode reports", err)
	}
	return reports, nil
}
