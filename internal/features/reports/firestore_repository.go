package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

// FirestoreRepository stores reports in the "reports" collection of a
// Firestore database.
type FirestoreRepository struct {
	client *firestore.Client
	col    *firestore.CollectionRef
}

func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client, col: client.Collection("reports")}
}

func (r *FirestoreRepository) Insert(ctx context.Context, report *Report) (string, error) {
	ref := r.col.NewDoc()
	if report.ID != "" {
		ref = r.col.Doc(report.ID)
	}
	if _, err := ref.Create(ctx, report); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", apperrors.ErrDuplicate
		}
		return "", apperrors.StoreFailure("insert report", err)
	}
	report.ID = ref.ID
	return ref.ID, nil
}

func (r *FirestoreRepository) GetByID(ctx context.Context, id string) (*Report, error) {
	snap, err := r.col.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.StoreFailure("get report "+id, err)
	}
	return decodeReport(snap)
}

func (r *FirestoreRepository) FindByCategory(ctx context.Context, category Category) ([]Report, error) {
	return r.collect(r.col.Where("category", "==", string(category)).Documents(ctx))
}

// List applies at most one equality filter server side and orders in memory,
// so no composite index is needed.
func (r *FirestoreRepository) List(ctx context.Context, filter ListFilter) ([]Report, error) {
	q := r.col.Query
	if filter.Category != "" {
		q = q.Where("category", "==", string(filter.Category))
	}

	reports, err := r.collect(q.Documents(ctx))
	if err != nil {
		return nil, err
	}

	if filter.Status != "" {
		filtered := reports[:0]
		for _, rep := range reports {
			if rep.Status == filter.Status {
				filtered = append(filtered, rep)
			}
		}
		reports = filtered
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// ListByIDs runs a single "in" query; Firestore caps its operand at 30 values.
func (r *FirestoreRepository) ListByIDs(ctx context.Context, ids []string) ([]Report, error) {
	if len(ids) == 0 {
		return []Report{}, nil
	}
	if len(ids) > listBatchSize {
		return nil, fmt.Errorf("list by ids: batch of %d exceeds %d", len(ids), listBatchSize)
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.col.Doc(id))
	}
	return r.collect(r.col.Where(firestore.DocumentID, "in", refs).Documents(ctx))
}

func (r *FirestoreRepository) AttachPhotos(ctx context.Context, id string, urls []string) error {
	return r.update(ctx, id, []firestore.Update{
		{Path: "photos", Value: urls},
		{Path: "photoState", Value: string(PhotoAttached)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
}

// MarkPhotoFailed checks and flips the state in one transaction so a
// concurrent AttachPhotos is never overwritten.
func (r *FirestoreRepository) MarkPhotoFailed(ctx context.Context, id string) (bool, error) {
	ref := r.col.Doc(id)
	marked := false
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		marked = false
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		report, err := decodeReport(snap)
		if err != nil {
			return err
		}
		if report.PhotoState != PhotoPending {
			return nil
		}

		marked = true
		return tx.Update(ref, []firestore.Update{
			{Path: "photoState", Value: string(PhotoFailed)},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return false, translateError(err, "mark photo failed "+id)
	}
	return marked, nil
}

// AppendConfirmation reads and rewrites the sequence inside a transaction;
// Firestore retries it when another writer touched the document.
func (r *FirestoreRepository) AppendConfirmation(ctx context.Context, id string, c Confirmation) error {
	ref := r.col.Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		report, err := decodeReport(snap)
		if err != nil {
			return err
		}

		confirmations := append(report.Confirmations, c)
		return tx.Update(ref, []firestore.Update{
			{Path: "confirmations", Value: confirmations},
			{Path: "confirmationCount", Value: len(confirmations)},
			{Path: "updatedAt", Value: c.Timestamp},
		})
	})
	return translateError(err, "confirm report "+id)
}

func (r *FirestoreRepository) Resolve(ctx context.Context, id string, evidence ResolutionEvidence) error {
	ref := r.col.Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		report, err := decodeReport(snap)
		if err != nil {
			return err
		}
		if report.IsResolved() {
			return apperrors.ErrAlreadyResolved
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(StatusResolved)},
			{Path: "resolvedAt", Value: evidence.Timestamp},
			{Path: "resolutionEvidence", Value: evidence},
			{Path: "updatedAt", Value: evidence.Timestamp},
		})
	})
	return translateError(err, "resolve report "+id)
}

// FindStalePhotoPending filters on photoState server side and on createdAt in
// memory; equality plus inequality on two fields needs a composite index.
func (r *FirestoreRepository) FindStalePhotoPending(ctx context.Context, before time.Time) ([]Report, error) {
	pending, err := r.collect(r.col.Where("photoState", "==", string(PhotoPending)).Documents(ctx))
	if err != nil {
		return nil, err
	}

	stale := make([]Report, 0, len(pending))
	for _, rep := range pending {
		if rep.CreatedAt.Before(before) {
			stale = append(stale, rep)
		}
	}
	return stale, nil
}

func (r *FirestoreRepository) update(ctx context.Context, id string, updates []firestore.Update) error {
	_, err := r.col.Doc(id).Update(ctx, updates)
	return translateError(err, "update report "+id)
}

func (r *FirestoreRepository) collect(it *firestore.DocumentIterator) ([]Report, error) {
	defer it.Stop()

	reports := make([]Report, 0)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, apperrors.StoreFailure("query reports", err)
		}
		report, err := decodeReport(snap)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func decodeReport(snap *firestore.DocumentSnapshot) (*Report, error) {
	var report Report
	if err := snap.DataTo(&report); err != nil {
		return nil, apperrors.StoreFailure("decode report "+snap.Ref.ID, err)
	}
	report.ID = snap.Ref.ID
	return &report, nil
}

func translateError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrAlreadyResolved), errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrStore):
		return err
	case status.Code(err) == codes.NotFound:
		return apperrors.ErrNotFound
	default:
		return apperrors.StoreFailure(op, err)
	}
}
