package reports

import (
	"context"
	"sync"
	"time"

	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
)

const sweepTimeout = 30 * time.Second

// PhotoSweeper marks reports whose photo phase never finished as failed, so a
// crash between the two create phases is visible instead of leaving an empty
// photo list that looks pending forever.
type PhotoSweeper struct {
	store    Store
	interval time.Duration
	staleAge time.Duration
	log      *logger.Logger
	now      func() time.Time
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewPhotoSweeper builds a sweeper that runs every interval and treats photos
// pending for longer than staleAge as failed.
func NewPhotoSweeper(store Store, interval, staleAge time.Duration, log *logger.Logger) *PhotoSweeper {
	return &PhotoSweeper{
		store:    store,
		interval: interval,
		staleAge: staleAge,
		log:      log,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

func (w *PhotoSweeper) Start() {
	w.wg.Add(1)
	go w.loop()
	w.log.Info("photo sweeper: started (every %s)", w.interval)
}

func (w *PhotoSweeper) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			w.Sweep(ctx)
			cancel()
		}
	}
}

// Sweep runs one pass and returns how many reports were marked failed.
func (w *PhotoSweeper) Sweep(ctx context.Context) int {
	stale, err := w.store.FindStalePhotoPending(ctx, w.now().Add(-w.staleAge))
	if err != nil {
		w.log.Error("photo sweeper: find stale: %v", err)
		return 0
	}

	marked := 0
	for _, r := range stale {
		ok, err := w.store.MarkPhotoFailed(ctx, r.ID)
		if err != nil {
			w.log.Error("photo sweeper: mark %s: %v", r.ID, err)
			continue
		}
		if ok {
			marked++
		}
	}
	if marked > 0 {
		w.log.Warn("photo sweeper: marked %d reports as photo failed", marked)
	}
	return marked
}

func (w *PhotoSweeper) Stop() {
	close(w.done)
	w.wg.Wait()
	w.log.Info("photo sweeper: stopped")
}
