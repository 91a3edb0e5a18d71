package reports

import (
	"context"
	"time"
)

// listBatchSize is the largest id set a single ListByIDs store call accepts.
const listBatchSize = 30

// Store persists reports. Implementations must make AppendConfirmation and
// Resolve atomic with respect to concurrent callers.
type Store interface {
	Insert(ctx context.Context, report *Report) (string, error)
	GetByID(ctx context.Context, id string) (*Report, error)
	FindByCategory(ctx context.Context, category Category) ([]Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, error)

	// ListByIDs fetches at most listBatchSize ids. Unknown ids are omitted.
	ListByIDs(ctx context.Context, ids []string) ([]Report, error)

	AttachPhotos(ctx context.Context, id string, urls []string) error

	// MarkPhotoFailed moves the photo state from pending to failed and reports
	// whether it did. Attached or already failed photos are left untouched.
	MarkPhotoFailed(ctx context.Context, id string) (bool, error)

	// AppendConfirmation pushes c and increments confirmationCount in one write.
	AppendConfirmation(ctx context.Context, id string, c Confirmation) error

	// Resolve moves an unresolved report to resolved. It returns
	// ErrAlreadyResolved when the report is already terminal.
	Resolve(ctx context.Context, id string, evidence ResolutionEvidence) error

	// FindStalePhotoPending returns reports whose photo is still pending and
	// that were created before the given instant.
	FindStalePhotoPending(ctx context.Context, before time.Time) ([]Report, error)
}

// UserIndex keeps the per-user back references. Both calls are idempotent.
type UserIndex interface {
	AddReportCreated(ctx context.Context, userID, reportID string) error
	AddReportConfirmed(ctx context.Context, userID, reportID string) error
}

// Actor is the caller of a lifecycle operation as handed over by the identity layer.
type Actor struct {
	UserID  string
	Name    string
	IsGuest bool
}
