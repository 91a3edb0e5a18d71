package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"

	"github.com/xyz-asif/reportabaches/internal/pkg/blob"
	"github.com/xyz-asif/reportabaches/internal/pkg/events"
	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

const (
	uploadAttempts = 3
	uploadDelay    = 500 * time.Millisecond
	uploadMaxDelay = 5 * time.Second
)

// Service owns the report state machine: creation, confirmation and resolution.
type Service struct {
	store     Store
	blobs     blob.Store
	users     UserIndex
	publisher events.Publisher
	log       *logger.Logger

	now            func() time.Time
	newEventID     func() string
	uploadAttempts uint
	uploadDelay    time.Duration
}

func NewService(store Store, blobs blob.Store, users UserIndex, publisher events.Publisher, log *logger.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		store:          store,
		blobs:          blobs,
		users:          users,
		publisher:      publisher,
		log:            log,
		now:            time.Now,
		newEventID:     uuid.NewString,
		uploadAttempts: uploadAttempts,
		uploadDelay:    uploadDelay,
	}
}

// Create stores a new pending report, then uploads its photo under the new id.
// When the upload keeps failing the record stays with PhotoState failed and
// the returned id is still valid alongside the error.
func (s *Service) Create(ctx context.Context, in CreateInput, actor Actor, anonymous bool) (string, error) {
	if err := validateCreate(in); err != nil {
		return "", err
	}

	now := s.now().UTC()
	creator := Creator{UserID: actor.UserID, Name: actor.Name, IsAnonymous: anonymous}
	if anonymous {
		creator.Name = AnonymousName
	}

	report := &Report{
		Category:      in.Category,
		Location:      in.Location,
		Photos:        []string{},
		PhotoState:    PhotoPending,
		Description:   strings.TrimSpace(in.Description),
		Address:       strings.TrimSpace(in.Address),
		Status:        StatusPending,
		CreatedBy:     creator,
		Confirmations: []Confirmation{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	id, err := s.store.Insert(ctx, report)
	if err != nil {
		return "", apperrors.Wrap(apperrors.OpCreate, err)
	}

	if err := s.attachPhoto(ctx, id, in.Photo); err != nil {
		s.markPhotoFailed(ctx, id)
		return id, apperrors.Wrap(apperrors.OpUpload, err)
	}

	if !anonymous && !actor.IsGuest && actor.UserID != "" {
		// Report.CreatedBy is authoritative; the user index can be rebuilt.
		if err := s.users.AddReportCreated(ctx, actor.UserID, id); err != nil {
			s.log.Warn("report %s: index for user %s: %v", id, actor.UserID, err)
		}
	}

	s.publish(ctx, events.RoutingKeyReportCreated, events.Event{
		ReportID:  id,
		Category:  string(report.Category),
		Status:    string(report.Status),
		ActorID:   creator.UserID,
		ActorName: creator.Name,
		Timestamp: now.UnixMilli(),
	})

	return id, nil
}

// RetryPhoto repairs a report whose photo phase failed or never finished.
// Only the author may call it, and only until a photo is attached.
func (s *Service) RetryPhoto(ctx context.Context, reportID string, actor Actor, photo *blob.Photo) error {
	if actor.UserID == "" {
		return apperrors.Wrap(apperrors.OpUpload, apperrors.ErrUnauthorized)
	}
	if strings.TrimSpace(reportID) == "" {
		return apperrors.Validation("report id is required")
	}
	if photo == nil || len(photo.Data) == 0 {
		return apperrors.Validation("a photo is required")
	}

	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return apperrors.Wrap(apperrors.OpUpload, err)
	}
	if report.CreatedBy.UserID != actor.UserID {
		return apperrors.Wrap(apperrors.OpUpload, apperrors.ErrPermissionDenied)
	}
	if report.PhotoState == PhotoAttached {
		return apperrors.Wrap(apperrors.OpUpload, apperrors.ErrPhotoAttached)
	}

	if err := s.attachPhoto(ctx, reportID, photo); err != nil {
		s.markPhotoFailed(ctx, reportID)
		return apperrors.Wrap(apperrors.OpUpload, err)
	}
	return nil
}

// attachPhoto is the retryable second phase of Create.
func (s *Service) attachPhoto(ctx context.Context, id string, photo *blob.Photo) error {
	url, path, err := s.upload(ctx, id, photo)
	if err != nil {
		return err
	}
	if err := s.store.AttachPhotos(ctx, id, []string{url}); err != nil {
		s.discard(ctx, path)
		return err
	}
	return nil
}

func (s *Service) markPhotoFailed(ctx context.Context, id string) {
	if _, err := s.store.MarkPhotoFailed(ctx, id); err != nil {
		s.log.Error("report %s: mark photo failed: %v", id, err)
	}
}

// discard removes an uploaded object whose URL could not be recorded.
func (s *Service) discard(ctx context.Context, path string) {
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.log.Warn("delete orphaned photo %s: %v", path, err)
	}
}

func (s *Service) upload(ctx context.Context, reportID string, photo *blob.Photo) (string, string, error) {
	path := blob.ReportPhotoPath(reportID, s.now())

	var url string
	err := retry.Do(
		func() error {
			var uploadErr error
			url, uploadErr = s.blobs.Upload(ctx, path, photo.Data, photo.ContentType)
			return uploadErr
		},
		retry.Context(ctx),
		retry.Attempts(s.uploadAttempts),
		retry.Delay(s.uploadDelay),
		retry.MaxDelay(uploadMaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn("upload %s: retry %d: %v", path, n+1, err)
		}),
	)
	if err != nil {
		return "", "", fmt.Errorf("upload %s: %w", path, err)
	}
	return url, path, nil
}

// Confirm appends a confirmation by actor. An optional photo is uploaded
// first and its failure aborts the confirmation.
func (s *Service) Confirm(ctx context.Context, reportID string, actor Actor, photo *blob.Photo) error {
	if strings.TrimSpace(reportID) == "" {
		return apperrors.Validation("report id is required")
	}
	if actor.UserID == "" {
		return apperrors.Wrap(apperrors.OpConfirm, apperrors.ErrUnauthorized)
	}
	if photo != nil && len(photo.Data) == 0 {
		return apperrors.Validation("photo is empty")
	}

	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return apperrors.Wrap(apperrors.OpConfirm, err)
	}

	confirmation := Confirmation{
		UserID:    actor.UserID,
		UserName:  actor.Name,
		Timestamp: s.now().UTC(),
	}
	var photoPath string
	if photo != nil {
		url, path, err := s.upload(ctx, reportID, photo)
		if err != nil {
			return apperrors.Wrap(apperrors.OpConfirm, err)
		}
		confirmation.PhotoURL = url
		photoPath = path
	}

	if err := s.store.AppendConfirmation(ctx, reportID, confirmation); err != nil {
		if photoPath != "" {
			s.discard(ctx, photoPath)
		}
		return apperrors.Wrap(apperrors.OpConfirm, err)
	}

	if !actor.IsGuest {
		if err := s.users.AddReportConfirmed(ctx, actor.UserID, reportID); err != nil {
			s.log.Warn("report %s: confirm index for user %s: %v", reportID, actor.UserID, err)
		}
	}

	s.publish(ctx, events.RoutingKeyReportConfirmed, events.Event{
		ReportID:  reportID,
		Category:  string(report.Category),
		Status:    string(report.Status),
		ActorID:   actor.UserID,
		ActorName: actor.Name,
		Count:     report.ConfirmationCount + 1,
		Timestamp: confirmation.Timestamp.UnixMilli(),
	})
	return nil
}

// Resolve closes a report with photographic evidence. Guests are rejected
// before anything is read or uploaded.
func (s *Service) Resolve(ctx context.Context, reportID string, actor Actor, photo *blob.Photo) error {
	if actor.IsGuest || actor.UserID == "" {
		return apperrors.Wrap(apperrors.OpResolve, apperrors.ErrPermissionDenied)
	}
	if strings.TrimSpace(reportID) == "" {
		return apperrors.Validation("report id is required")
	}
	if photo == nil || len(photo.Data) == 0 {
		return apperrors.Validation("a photo is required to resolve a report")
	}

	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return apperrors.Wrap(apperrors.OpResolve, err)
	}
	if report.IsResolved() {
		return apperrors.Wrap(apperrors.OpResolve, apperrors.ErrAlreadyResolved)
	}

	url, path, err := s.upload(ctx, reportID, photo)
	if err != nil {
		return apperrors.Wrap(apperrors.OpResolve, err)
	}

	evidence := ResolutionEvidence{
		PhotoURL:   url,
		ResolvedBy: Resolver{UserID: actor.UserID, Name: actor.Name},
		Timestamp:  s.now().UTC(),
		Approvals:  []string{},
	}
	if err := s.store.Resolve(ctx, reportID, evidence); err != nil {
		s.discard(ctx, path)
		return apperrors.Wrap(apperrors.OpResolve, err)
	}

	s.publish(ctx, events.RoutingKeyReportResolved, events.Event{
		ReportID:  reportID,
		Category:  string(report.Category),
		Status:    string(StatusResolved),
		ActorID:   actor.UserID,
		ActorName: actor.Name,
		Count:     report.ConfirmationCount,
		Timestamp: evidence.Timestamp.UnixMilli(),
	})
	return nil
}

// Get returns a single report.
func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	return s.store.GetByID(ctx, id)
}

// List returns reports matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Report, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperrors.Validation("unknown category %q", filter.Category)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Validation("unknown status %q", filter.Status)
	}
	return s.store.List(ctx, filter)
}

// ListByIDs materializes reports for the given ids, splitting the lookup into
// store-sized batches. Duplicate ids are collapsed and unknown ids omitted.
func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]Report, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	result := make([]Report, 0, len(unique))
	for start := 0; start < len(unique); start += listBatchSize {
		end := start + listBatchSize
		if end > len(unique) {
			end = len(unique)
		}
		batch, err := s.store.ListByIDs(ctx, unique[start:end])
		if err != nil {
			return nil, fmt.Errorf("list reports %d-%d: %w", start, end, err)
		}
		result = append(result, batch...)
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, routingKey string, event events.Event) {
	event.ID = s.newEventID()
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.log.Warn("publish %s for %s: %v", routingKey, event.ReportID, err)
	}
}
