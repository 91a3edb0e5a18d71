package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/xyz-asif/reportabaches/internal/pkg/blob"
	"github.com/xyz-asif/reportabaches/internal/pkg/events"
	"github.com/xyz-asif/reportabaches/internal/pkg/geo"
	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory Store guarded by a single mutex.
type memStore struct {
	mu        sync.Mutex
	reports   map[string]*Report
	nextID    int
	findErr   error
	insertErr error
	attachErr error
	batches   [][]string
}

func newMemStore() *memStore {
	return &memStore{reports: make(map[string]*Report)}
}

func cloneReport(r *Report) Report {
	out := *r
	out.Photos = append([]string{}, r.Photos...)
	out.Confirmations = append([]Confirmation{}, r.Confirmations...)
	if r.ResolutionEvidence != nil {
		ev := *r.ResolutionEvidence
		out.ResolutionEvidence = &ev
	}
	return out
}

func (s *memStore) Insert(_ context.Context, r *Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	if r.ID == "" {
		s.nextID++
		r.ID = fmt.Sprintf("r%03d", s.nextID)
	}
	stored := cloneReport(r)
	s.reports[r.ID] = &stored
	return r.ID, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := cloneReport(r)
	return &out, nil
}

func (s *memStore) FindByCategory(_ context.Context, category Category) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []Report
	for _, r := range s.sorted() {
		if r.Category == category {
			out = append(out, cloneReport(r))
		}
	}
	return out, nil
}

func (s *memStore) List(_ context.Context, filter ListFilter) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Report{}
	for _, r := range s.sorted() {
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, cloneReport(r))
	}
	return out, nil
}

func (s *memStore) ListByIDs(_ context.Context, ids []string) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) > listBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds %d", len(ids), listBatchSize)
	}
	s.batches = append(s.batches, append([]string{}, ids...))
	out := []Report{}
	for _, id := range ids {
		if r, ok := s.reports[id]; ok {
			out = append(out, cloneReport(r))
		}
	}
	return out, nil
}

func (s *memStore) AttachPhotos(_ context.Context, id string, urls []string) error {
	return s.mutate(id, func(r *Report) error {
		if s.attachErr != nil {
			return s.attachErr
		}
		r.Photos = append([]string{}, urls...)
		r.PhotoState = PhotoAttached
		return nil
	})
}

func (s *memStore) MarkPhotoFailed(_ context.Context, id string) (bool, error) {
	marked := false
	err := s.mutate(id, func(r *Report) error {
		if r.PhotoState == PhotoPending {
			r.PhotoState = PhotoFailed
			marked = true
		}
		return nil
	})
	return marked, err
}

func (s *memStore) AppendConfirmation(_ context.Context, id string, c Confirmation) error {
	return s.mutate(id, func(r *Report) error {
		r.Confirmations = append(r.Confirmations, c)
		r.ConfirmationCount++
		r.UpdatedAt = c.Timestamp
		return nil
	})
}

func (s *memStore) Resolve(_ context.Context, id string, evidence ResolutionEvidence) error {
	return s.mutate(id, func(r *Report) error {
		if r.IsResolved() {
			return apperrors.ErrAlreadyResolved
		}
		at := evidence.Timestamp
		r.Status = StatusResolved
		r.ResolvedAt = &at
		r.ResolutionEvidence = &evidence
		r.UpdatedAt = at
		return nil
	})
}

func (s *memStore) FindStalePhotoPending(_ context.Context, before time.Time) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Report
	for _, r := range s.sorted() {
		if r.PhotoState == PhotoPending && r.CreatedAt.Before(before) {
			out = append(out, cloneReport(r))
		}
	}
	return out, nil
}

func (s *memStore) mutate(id string, fn func(r *Report) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	return fn(r)
}

func (s *memStore) sorted() []*Report {
	ids := make([]string, 0, len(s.reports))
	for id := range s.reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Report, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.reports[id])
	}
	return out
}

func (s *memStore) put(r Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneReport(&r)
	s.reports[r.ID] = &stored
}

// fakeBlobs fails the first failFirst uploads.
type fakeBlobs struct {
	mu        sync.Mutex
	failFirst int
	paths     []string
	deleted   []string
}

func (b *fakeBlobs) Upload(_ context.Context, path string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = append(b.paths, path)
	if len(data) == 0 {
		return "", blob.ErrEmptyPhoto
	}
	if b.failFirst > 0 {
		b.failFirst--
		return "", errors.New("bucket unavailable")
	}
	return "https://cdn.test/" + path, nil
}

func (b *fakeBlobs) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, path)
	return nil
}

func (b *fakeBlobs) uploads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.paths)
}

// fakeUsers keeps set semantics like $addToSet / ArrayUnion.
type fakeUsers struct {
	mu        sync.Mutex
	created   map[string][]string
	confirmed map[string][]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{created: map[string][]string{}, confirmed: map[string][]string{}}
}

func addToSet(set []string, v string) []string {
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}

func (u *fakeUsers) AddReportCreated(_ context.Context, userID, reportID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.created[userID] = addToSet(u.created[userID], reportID)
	return nil
}

func (u *fakeUsers) AddReportConfirmed(_ context.Context, userID, reportID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.confirmed[userID] = addToSet(u.confirmed[userID], reportID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, event)
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(logger.FATAL, io.Discard)
}

type fixture struct {
	store     *memStore
	blobs     *fakeBlobs
	users     *fakeUsers
	publisher *recordingPublisher
	service   *Service
	matcher   *Matcher
}

func newFixture() *fixture {
	f := &fixture{
		store:     newMemStore(),
		blobs:     &fakeBlobs{},
		users:     newFakeUsers(),
		publisher: &recordingPublisher{},
	}
	f.service = NewService(f.store, f.blobs, f.users, f.publisher, testLogger())
	f.service.uploadDelay = time.Millisecond
	f.service.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	f.matcher = NewMatcher(f.store, DefaultRadiusMeters, testLogger())
	return f
}

func testPhoto() *blob.Photo {
	return &blob.Photo{Data: []byte("\xff\xd8\xff\xe0jpeg"), ContentType: "image/jpeg", Filename: "issue.jpg"}
}

var plaza = geo.Point{Latitude: 13.4833, Longitude: -88.1833}

// north returns p moved meters due north.
func north(p geo.Point, meters float64) geo.Point {
	return geo.Point{Latitude: p.Latitude + meters/(geo.EarthRadiusMeters*math.Pi/180), Longitude: p.Longitude}
}

var (
	alice = Actor{UserID: "uid-alice", Name: "Alice"}
	bob   = Actor{UserID: "uid-bob", Name: "Bob"}
	guest = Actor{UserID: "guest_0d6f", Name: "Guest", IsGuest: true}
)
