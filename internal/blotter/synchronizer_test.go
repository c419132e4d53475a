package blotter

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"traderterm/internal/oms"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSyncOnceReplacesCollection(t *testing.T) {
	c := NewCollection[oms.Order]()
	c.Replace(orders(9))

	s := NewSynchronizer("orders", c, func(context.Context) ([]oms.Order, error) {
		return orders(2, 1), nil
	}, time.Second, discardLogger())

	s.SyncOnce(context.Background())
	if got := collIDs(c); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("ids after sync = %v, want [1 2]", got)
	}
}

func TestSyncOnceFailureLeavesCollectionUntouched(t *testing.T) {
	c := NewCollection[oms.Order]()
	c.Replace(orders(1, 2))

	s := NewSynchronizer("orders", c, func(context.Context) ([]oms.Order, error) {
		return nil, errors.New("connection refused")
	}, time.Second, discardLogger())

	s.SyncOnce(context.Background())
	if got := collIDs(c); len(got) != 2 {
		t.Errorf("ids after failed sync = %v, want [1 2]", got)
	}
}

func TestRunPollsOnSchedule(t *testing.T) {
	c := NewCollection[oms.Order]()
	var fetches atomic.Int32
	s := NewSynchronizer("orders", c, func(context.Context) ([]oms.Order, error) {
		fetches.Add(1)
		return orders(1), nil
	}, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if n := fetches.Load(); n < 3 {
		t.Errorf("fetch count = %d, want at least 3", n)
	}
	if c.Len() != 1 {
		t.Errorf("collection len = %d, want 1", c.Len())
	}
}

func TestRunSurvivesFetchFailures(t *testing.T) {
	c := NewCollection[oms.Order]()
	var fetches atomic.Int32
	s := NewSynchronizer("orders", c, func(context.Context) ([]oms.Order, error) {
		if fetches.Add(1) == 1 {
			return nil, errors.New("transient failure")
		}
		return orders(1), nil
	}, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	// The loop kept ticking after the failure and the collection caught up.
	if n := fetches.Load(); n < 2 {
		t.Errorf("fetch count = %d, want at least 2", n)
	}
	if c.Len() != 1 {
		t.Errorf("collection len = %d, want 1", c.Len())
	}
}

func TestRunSkipsTickWhileFetchInFlight(t *testing.T) {
	c := NewCollection[oms.Order]()
	release := make(chan struct{})
	var fetches atomic.Int32
	s := NewSynchronizer("orders", c, func(context.Context) ([]oms.Order, error) {
		fetches.Add(1)
		<-release
		return orders(1), nil
	}, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Many intervals elapse while the first fetch blocks; no overlapping
	// fetch may start.
	time.Sleep(100 * time.Millisecond)
	if n := fetches.Load(); n != 1 {
		t.Errorf("fetch count while blocked = %d, want 1", n)
	}

	close(release)
	time.Sleep(50 * time.Millisecond)
	if n := fetches.Load(); n < 2 {
		t.Errorf("fetch count after release = %d, want at least 2", n)
	}

	cancel()
	<-done
}
