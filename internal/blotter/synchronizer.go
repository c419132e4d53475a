package blotter

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultInterval is the snapshot-polling interval used when none is
// configured.
const DefaultInterval = time.Second

// Synchronizer keeps one collection consistent with server state by
// unconditional full-snapshot replacement on a fixed interval. A failed
// fetch is dropped without retry or backoff; the next tick proceeds on
// schedule. A tick that fires while a previous fetch is still in flight is
// skipped, so at most one snapshot request is outstanding and a stale
// response can never overwrite a newer one.
type Synchronizer[T Entity] struct {
	name     string
	coll     *Collection[T]
	fetch    func(ctx context.Context) ([]T, error)
	interval time.Duration
	log      *slog.Logger
	inFlight atomic.Bool
}

// NewSynchronizer creates a synchronizer for the named collection. A
// non-positive interval falls back to DefaultInterval.
func NewSynchronizer[T Entity](
	name string,
	coll *Collection[T],
	fetch func(ctx context.Context) ([]T, error),
	interval time.Duration,
	log *slog.Logger,
) *Synchronizer[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Synchronizer[T]{
		name:     name,
		coll:     coll,
		fetch:    fetch,
		interval: interval,
		log:      log,
	}
}

// Run polls until ctx is cancelled. It performs one immediate sync, then one
// per interval. Fetch failures never escape the loop.
func (s *Synchronizer[T]) Run(ctx context.Context) {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick starts one snapshot fetch unless a previous one is still outstanding.
func (s *Synchronizer[T]) tick(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Debug("poll still in flight, skipping tick", "collection", s.name)
		return
	}
	go func() {
		defer s.inFlight.Store(false)
		s.SyncOnce(ctx)
	}()
}

// SyncOnce fetches one snapshot and replaces the collection contents. On
// failure the collection is left untouched.
func (s *Synchronizer[T]) SyncOnce(ctx context.Context) {
	items, err := s.fetch(ctx)
	if err != nil {
		s.log.Debug("snapshot fetch failed", "collection", s.name, "error", err)
		return
	}
	s.coll.Replace(items)
}
